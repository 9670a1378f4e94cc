package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Prices and stock live on its variants.
type Product struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string           `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=3,max=100"`
	Description string           `json:"description" validate:"omitempty,max=500"`
	Variants    []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" validate:"omitempty,dive"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductVariant is a purchasable SKU (size/color combination) of a product.
// Its Price and Stock are authoritative for the checkout flow.
type ProductVariant struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);index;not null"`
	SKU       string          `json:"sku" gorm:"type:varchar(50);uniqueIndex;not null" validate:"required,max=50"`
	Size      string          `json:"size,omitempty" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Color     string          `json:"color,omitempty" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	MRP       decimal.Decimal `json:"mrp" gorm:"type:numeric(12,2);not null;default:0"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Stock     int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
