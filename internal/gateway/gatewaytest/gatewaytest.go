// Package gatewaytest provides an in-memory payment gateway and helpers to
// produce signed webhook deliveries.
package gatewaytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"kedai/internal/gateway"

	"github.com/stripe/stripe-go/v76/webhook"
)

// Secret is the webhook secret Fake verifies against by default.
const Secret = "whsec_test_secret"

// IntentCall records one CreateIntent invocation.
type IntentCall struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// Fake is a Gateway that keeps intents in memory. Webhook verification uses
// the real Stripe signature scheme.
type Fake struct {
	// Err, when set, is returned by CreateIntent after recording the call.
	Err    error
	Secret string
	Calls  []IntentCall

	mu  sync.Mutex
	seq int
}

// New returns a Fake using Secret.
func New() *Fake {
	return &Fake{Secret: Secret}
}

// CreateIntent implements gateway.Gateway.
func (f *Fake) CreateIntent(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (*gateway.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, IntentCall{AmountMinor: amountMinor, Currency: currency, Metadata: metadata})
	if f.Err != nil {
		return nil, f.Err
	}
	f.seq++
	id := fmt.Sprintf("pi_test_%d", f.seq)
	return &gateway.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

// ConstructEvent implements gateway.Gateway.
func (f *Fake) ConstructEvent(payload []byte, signature string) (*gateway.Event, error) {
	return gateway.ParseStripeEvent(payload, signature, f.Secret)
}

// LastCall returns the most recent CreateIntent call.
func (f *Fake) LastCall() (IntentCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return IntentCall{}, false
	}
	return f.Calls[len(f.Calls)-1], true
}

// Sign returns a Stripe-Signature header value for payload.
func Sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  secret,
	}).Header
}

// PaymentIntentEvent builds a webhook payload for a payment intent event.
func PaymentIntentEvent(eventID, eventType, intentID, orderID string) []byte {
	return RawEvent(eventID, eventType, map[string]interface{}{
		"id":            intentID,
		"object":        "payment_intent",
		"status":        "succeeded",
		"latest_charge": "ch_" + intentID,
		"metadata":      map[string]string{gateway.MetadataOrderID: orderID},
	})
}

// RawEvent builds a webhook payload whose data.object is object as given.
func RawEvent(eventID, eventType string, object interface{}) []byte {
	body, err := json.Marshal(map[string]interface{}{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": "2023-10-16",
		"created":     time.Now().Unix(),
		"data":        map[string]interface{}{"object": object},
	})
	if err != nil {
		panic(err)
	}
	return body
}
