package handlers

import (
	"kedai/internal/models"
	"kedai/internal/services"
)

// LineItemRequest is one requested variant at checkout.
type LineItemRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

func toLineItems(items []LineItemRequest) []services.LineItem {
	out := make([]services.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, services.LineItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return out
}

// CheckoutResponse is an order plus the payment handle the client needs to
// confirm a gateway payment.
type CheckoutResponse struct {
	*models.Order
	ClientSecret    string   `json:"client_secret,omitempty"`
	PaymentIntentID string   `json:"payment_intent_id,omitempty"`
	SkippedItems    []string `json:"skipped_items,omitempty"`
	CouponRejected  string   `json:"coupon_rejected,omitempty"`
}

func newCheckoutResponse(checkout *services.Checkout) CheckoutResponse {
	return CheckoutResponse{
		Order:           checkout.Order,
		ClientSecret:    checkout.ClientSecret,
		PaymentIntentID: checkout.PaymentIntentID,
		SkippedItems:    checkout.SkippedItems,
		CouponRejected:  checkout.CouponRejected,
	}
}
