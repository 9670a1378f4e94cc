package services_test

import (
	"testing"

	"kedai/internal/gateway"
	"kedai/internal/gateway/gatewaytest"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func (f *fixture) placeGatewayOrder(t *testing.T, qty int) *models.Order {
	t.Helper()
	checkout, err := f.orderService.PlaceOrder(f.ctx, f.orderInput(models.PaymentGateway, item(f.variantA, qty)))
	require.NoError(t, err)
	return checkout.Order
}

func (f *fixture) deliver(t *testing.T, eventID, eventType, orderID string) (*services.WebhookResult, error) {
	t.Helper()
	payload := gatewaytest.PaymentIntentEvent(eventID, eventType, "pi_"+eventID, orderID)
	return f.paymentService.HandleWebhook(f.ctx, payload, gatewaytest.Sign(payload, gatewaytest.Secret))
}

func TestPaymentService_CreatePaymentIntentRecomputesAmount(t *testing.T) {
	f := newFixture(t)
	in := services.PaymentIntentInput{
		Amount:   100, // the client is wrong
		Currency: "usd",
		Discount: dec("50"),
		Order:    f.orderInput("", item(f.variantA, 2)),
	}

	checkout, err := f.paymentService.CreatePaymentIntent(f.ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentGateway, checkout.Order.PaymentType)
	assert.NotEmpty(t, checkout.ClientSecret)
	assert.NotEmpty(t, checkout.PaymentIntentID)

	call, ok := f.gw.LastCall()
	require.True(t, ok)
	assert.Equal(t, int64(160000), call.AmountMinor)
	assert.Equal(t, "usd", call.Currency)

	assert.Len(t, f.logs.FilterMessage("Client amount differs from server total").All(), 1)
	assert.Len(t, f.logs.FilterMessage("Client discount differs from server discount").All(), 1)
}

func TestPaymentService_WebhookSuccessIsIdempotent(t *testing.T) {
	f := newFixture(t)
	order := f.placeGatewayOrder(t, 2)

	res, err := f.deliver(t, "evt_1", gateway.EventPaymentSucceeded, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "applied", res.Outcome)

	stored := f.reload(t, order.ID)
	assert.Equal(t, models.PaymentSuccess, stored.PaymentStatus)
	require.NotNil(t, stored.TxnID)
	assert.Equal(t, "ch_pi_evt_1", *stored.TxnID)
	f.pub.AssertCalled(t, "Publish", mock.Anything, services.RoutingPaymentSucceeded, mock.Anything)

	res, err = f.deliver(t, "evt_1", gateway.EventPaymentSucceeded, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "duplicate_event", res.Outcome)
	assert.Equal(t, models.PaymentSuccess, f.reload(t, order.ID).PaymentStatus)
	f.pub.AssertNumberOfCalls(t, "Publish", 2) // order.created + one payment_succeeded
}

func TestPaymentService_WebhookFailureRestocks(t *testing.T) {
	f := newFixture(t)
	order := f.placeGatewayOrder(t, 4)
	assert.Equal(t, 6, f.stockOf(t, f.variantA.ID))

	res, err := f.deliver(t, "evt_f", gateway.EventPaymentFailed, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "applied", res.Outcome)
	assert.Equal(t, models.PaymentFailed, f.reload(t, order.ID).PaymentStatus)
	assert.Equal(t, 10, f.stockOf(t, f.variantA.ID))
}

func TestPaymentService_ConflictingOutcomeIsNotApplied(t *testing.T) {
	f := newFixture(t)
	order := f.placeGatewayOrder(t, 1)

	_, err := f.deliver(t, "evt_ok", gateway.EventPaymentSucceeded, order.ID)
	require.NoError(t, err)

	res, err := f.deliver(t, "evt_late_fail", gateway.EventPaymentFailed, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "conflict", res.Outcome)
	assert.Equal(t, models.PaymentSuccess, f.reload(t, order.ID).PaymentStatus)
	assert.Equal(t, 9, f.stockOf(t, f.variantA.ID))

	entries := f.logs.FilterMessage("Conflicting payment outcome not applied").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestPaymentService_UnknownOrderIsAcknowledged(t *testing.T) {
	f := newFixture(t)

	res, err := f.deliver(t, "evt_u", gateway.EventPaymentSucceeded, "no-such-order")
	require.NoError(t, err)
	assert.Equal(t, "order_not_found", res.Outcome)

	entries := f.logs.FilterMessage("Payment event for unknown order").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "no-such-order", entries[0].ContextMap()["order_id"])
}

func TestPaymentService_UndecodableEventIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	order := f.placeGatewayOrder(t, 1)
	payload := gatewaytest.RawEvent("evt_bad", gateway.EventPaymentSucceeded, map[string]interface{}{
		"id":       "pi_bad",
		"object":   "payment_intent",
		"metadata": order.ID,
	})

	res, err := f.paymentService.HandleWebhook(f.ctx, payload, gatewaytest.Sign(payload, gatewaytest.Secret))
	require.NoError(t, err)
	assert.Equal(t, "evt_bad", res.EventID)
	assert.Equal(t, "order_not_found", res.Outcome)
	assert.Equal(t, models.PaymentPending, f.reload(t, order.ID).PaymentStatus)

	entries := f.logs.FilterMessage("Undecodable payment event acknowledged").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestPaymentService_IgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)
	order := f.placeGatewayOrder(t, 1)

	res, err := f.deliver(t, "evt_o", "charge.succeeded", order.ID)
	require.NoError(t, err)
	assert.Equal(t, services.WebhookOutcomeIgnored, res.Outcome)
	assert.Equal(t, models.PaymentPending, f.reload(t, order.ID).PaymentStatus)
}

func TestPaymentService_RejectsUnverifiedDeliveries(t *testing.T) {
	f := newFixture(t)
	order := f.placeGatewayOrder(t, 1)
	payload := gatewaytest.PaymentIntentEvent("evt_x", gateway.EventPaymentSucceeded, "pi_x", order.ID)

	_, err := f.paymentService.HandleWebhook(f.ctx, payload, "")
	assert.True(t, errors.Is(err, gateway.ErrMissingSignature))

	_, err = f.paymentService.HandleWebhook(f.ctx, payload, gatewaytest.Sign(payload, "whsec_forged"))
	assert.True(t, errors.Is(err, gateway.ErrInvalidSignature))

	f.gw.Secret = ""
	_, err = f.paymentService.HandleWebhook(f.ctx, payload, gatewaytest.Sign(payload, gatewaytest.Secret))
	assert.True(t, errors.Is(err, gateway.ErrMissingSecret))

	assert.Equal(t, models.PaymentPending, f.reload(t, order.ID).PaymentStatus)
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"1600", "pkr", 160000},
		{"2610.50", "usd", 261050},
		{"0.005", "usd", 1},
		{"0", "usd", 0},
		{"1600", "jpy", 1600},
		{"1600.6", "JPY", 1601},
		{"5000", "krw", 5000},
		{"12.345", "kwd", 12350},
	}
	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, services.MinorUnits(dec(tt.amount), tt.currency))
		})
	}
}

func TestPaymentService_ZeroDecimalCurrencyIsNotScaled(t *testing.T) {
	f := newFixture(t)
	checkout, err := f.paymentService.CreatePaymentIntent(f.ctx, services.PaymentIntentInput{
		Amount:   1600,
		Currency: "jpy",
		Order:    f.orderInput("", item(f.variantA, 2)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1600), checkout.AmountMinor)

	call, ok := f.gw.LastCall()
	require.True(t, ok)
	assert.Equal(t, int64(1600), call.AmountMinor)
	assert.Equal(t, "jpy", call.Currency)
	assert.Empty(t, f.logs.FilterMessage("Client amount differs from server total").All())
}
