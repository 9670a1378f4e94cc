package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is how an order is paid for.
type PaymentType string

// PaymentStatus is the settlement state of an order. Success and failed are
// terminal.
type PaymentStatus string

const (
	PaymentCOD     PaymentType = "cod"
	PaymentGateway PaymentType = "gateway"

	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// IsTerminal reports whether no further payment transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// OrderStatus is an entry of the fulfillment status vocabulary.
type OrderStatus struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	IsDefault bool   `json:"is_default" gorm:"not null;default:false"`
}

// Order represents a placed customer order. Contact and shipping fields are a
// snapshot taken at creation time.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID    string          `json:"customer_id" gorm:"type:varchar(36);index;not null"`
	Name          string          `json:"name" gorm:"type:varchar(100)"`
	Email         string          `json:"email" gorm:"type:varchar(255)"`
	Mobile        string          `json:"mobile" gorm:"type:varchar(15)"`
	Address       string          `json:"address"`
	City          string          `json:"city" gorm:"type:varchar(50)"`
	State         string          `json:"state" gorm:"type:varchar(50)"`
	PostalCode    string          `json:"postal_code" gorm:"type:varchar(10)"`
	CouponCode    *string         `json:"coupon_code" gorm:"type:varchar(50)"`
	CouponValue   decimal.Decimal `json:"coupon_value" gorm:"type:numeric(12,2);not null;default:0"`
	OrderStatusID uint            `json:"order_status_id" gorm:"not null"`
	OrderStatus   *OrderStatus    `json:"order_status,omitempty" gorm:"foreignKey:OrderStatusID"`
	PaymentType   PaymentType     `json:"payment_type" gorm:"type:varchar(10);not null"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"type:varchar(10);not null;default:pending"`
	PaymentID     *string         `json:"payment_id" gorm:"type:varchar(100);index"`
	TxnID         *string         `json:"txn_id" gorm:"type:varchar(100)"`
	TotalAmt      decimal.Decimal `json:"total_amt" gorm:"type:numeric(12,2);not null"`
	TrackDetails  string          `json:"track_details"`
	Details       []OrderDetail   `json:"details" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderDetail is an immutable order line. UnitPrice is the variant price at
// the moment the order was placed and is never re-read from the catalog.
type OrderDetail struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);not null"`
	VariantID string          `json:"variant_id" gorm:"type:varchar(36);not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
}

// LineTotal returns UnitPrice * Quantity.
func (d OrderDetail) LineTotal() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}
