package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponType enumerates the supported discount strategies.
type CouponType string

const (
	// CouponFixed takes a fixed amount off the order.
	CouponFixed CouponType = "fixed"
	// CouponPercentage takes a percentage of the order amount off.
	CouponPercentage CouponType = "percentage"
)

// Coupon is a discount rule applied at checkout.
type Coupon struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"type:varchar(100)"`
	Code        string          `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	Type        CouponType      `json:"type" gorm:"type:varchar(20);not null"`
	Value       decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null"`
	MinOrderAmt decimal.Decimal `json:"min_order_amt" gorm:"type:numeric(12,2);not null;default:0"`
	IsOneTime   bool            `json:"is_one_time" gorm:"not null;default:false"`
	TimesUsed   int             `json:"-" gorm:"not null;default:0"`
	Active      bool            `json:"active" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
