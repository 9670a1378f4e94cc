package models

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Lookup failures.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("variant not found")
	ErrCartLineNotFound = errors.New("cart line not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCustomerNotFound = errors.New("customer profile not found")
	ErrStatusNotFound   = errors.New("order status not found")
)

// Business rule violations.
var (
	ErrVariantMismatch    = errors.New("variant does not belong to product")
	ErrNoValidItems       = errors.New("no valid items in order")
	ErrCouponUnavailable  = errors.New("coupon is no longer available")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

// OutOfStockError is returned when a cart quantity exceeds the variant stock.
type OutOfStockError struct {
	VariantID string
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("out of stock: variant %s has %d available", e.VariantID, e.Available)
}

// InsufficientStockError is returned when an order line cannot be reserved.
// The whole order is rolled back.
type InsufficientStockError struct {
	VariantID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s (requested: %d, available: %d)",
		e.VariantID, e.Requested, e.Available)
}

// GatewayError reports a payment gateway failure for an order that has
// already been committed.
type GatewayError struct {
	OrderID string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway failed for order %s: %v", e.OrderID, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
