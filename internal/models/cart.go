package models

import "time"

// Shopper kinds. A guest shopper id is an opaque session token.
const (
	ShopperRegistered = "registered"
	ShopperGuest      = "guest"
)

// CartLine is one (variant, quantity) pair in a shopper's cart. There is at
// most one line per (ShopperID, VariantID).
type CartLine struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ShopperID   string          `json:"shopper_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_cart_shopper_variant"`
	ShopperKind string          `json:"shopper_kind" gorm:"type:varchar(20);not null;default:guest"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36);not null"`
	VariantID   string          `json:"variant_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_shopper_variant"`
	Variant     *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
