package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe implements Gateway on top of the Stripe API.
type Stripe struct {
	api           *client.API
	webhookSecret string
}

// NewStripe builds a Stripe gateway. backends may be nil to use the default
// Stripe endpoints.
func NewStripe(secretKey, webhookSecret string, backends *stripe.Backends) *Stripe {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Stripe{api: api, webhookSecret: webhookSecret}
}

// CreateIntent creates a PaymentIntent for amountMinor in the smallest currency unit.
func (s *Stripe) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, classify(err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// classify separates definitive API refusals from failures whose outcome is unknown.
func classify(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 {
		return fmt.Errorf("%w: %s", ErrRejected, stripeErr.Msg)
	}
	return errors.Wrap(err, "create payment intent")
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
func (s *Stripe) ConstructEvent(payload []byte, signature string) (*Event, error) {
	return ParseStripeEvent(payload, signature, s.webhookSecret)
}

// ParseStripeEvent verifies a Stripe webhook delivery against secret.
// It fails closed when the header or the secret is missing.
func ParseStripeEvent(payload []byte, signature, secret string) (*Event, error) {
	if signature == "" {
		return nil, ErrMissingSignature
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if evt.Type != EventPaymentSucceeded && evt.Type != EventPaymentFailed {
		return out, nil
	}
	// The signature holds from here on, so a bad payload is reported on the
	// event and the delivery is still acknowledged.
	if evt.Data == nil {
		out.DecodeErr = errors.New("payment intent event without data")
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		out.DecodeErr = errors.Wrap(err, "decode payment intent")
		return out, nil
	}
	out.PaymentIntentID = pi.ID
	out.OrderID = pi.Metadata[MetadataOrderID]
	if pi.LatestCharge != nil {
		out.ChargeID = pi.LatestCharge.ID
	}
	return out, nil
}
