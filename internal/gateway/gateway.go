// Package gateway wraps the external card processor behind a small contract:
// create a payment intent, and turn a signed webhook delivery into an Event.
package gateway

import (
	"context"

	"github.com/go-faster/errors"
)

// Event types the reconciler acts on.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// MetadataOrderID is the intent metadata key correlating an intent with a local order.
const MetadataOrderID = "order_id"

var (
	// ErrMissingSignature is returned when a webhook carries no signature header.
	ErrMissingSignature = errors.New("missing webhook signature")
	// ErrMissingSecret is returned when no webhook secret is configured.
	ErrMissingSecret = errors.New("webhook secret is not configured")
	// ErrInvalidSignature is returned when the signature does not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrRejected marks a definitive refusal by the processor, as opposed to a
	// timeout or transport failure whose upstream outcome is unknown.
	ErrRejected = errors.New("payment gateway rejected the request")
)

// Intent is the processor's handle for an in-progress charge.
type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook event.
type Event struct {
	ID   string
	Type string
	// The fields below are only set for payment intent events.
	PaymentIntentID string
	OrderID         string
	ChargeID        string
	// DecodeErr is set when a verified payment intent event has an
	// unreadable payload. OrderID is empty in that case.
	DecodeErr error
}

// Gateway is the payment processor contract.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
