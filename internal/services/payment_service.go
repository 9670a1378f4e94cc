package services

import (
	"context"

	"kedai/internal/gateway"
	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WebhookOutcomeIgnored is reported for verified events the reconciler does not act on.
const WebhookOutcomeIgnored = "ignored"

// PaymentService creates gateway checkouts and reconciles gateway webhooks
// with local orders.
type PaymentService struct {
	orders    *OrderService
	repo      repositories.OrderRepository
	gateway   gateway.Gateway
	publisher EventPublisher
	log       *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(orders *OrderService, repo repositories.OrderRepository, gw gateway.Gateway, publisher EventPublisher, log *zap.Logger) *PaymentService {
	return &PaymentService{
		orders:    orders,
		repo:      repo,
		gateway:   gw,
		publisher: publisher,
		log:       log,
	}
}

// PaymentIntentInput is a create-payment-intent request. Amount and Discount
// are what the client believes; the server recomputes both.
type PaymentIntentInput struct {
	Amount   int64
	Currency string
	Discount decimal.Decimal
	Order    PlaceOrderInput
}

// CreatePaymentIntent places a gateway order and returns its payment handle.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*Checkout, error) {
	in.Order.PaymentType = models.PaymentGateway
	in.Order.Currency = in.Currency

	checkout, err := s.orders.PlaceOrder(ctx, in.Order)
	if err != nil {
		return checkout, err
	}

	order := checkout.Order
	if expected := checkout.AmountMinor; in.Amount != 0 && in.Amount != expected {
		s.log.Warn("Client amount differs from server total",
			zap.String("order_id", order.ID),
			zap.Int64("client_amount", in.Amount),
			zap.Int64("server_amount", expected),
		)
	}
	if !in.Discount.IsZero() && !in.Discount.Equal(order.CouponValue) {
		s.log.Warn("Client discount differs from server discount",
			zap.String("order_id", order.ID),
			zap.String("client_discount", in.Discount.String()),
			zap.String("server_discount", order.CouponValue.String()),
		)
	}
	return checkout, nil
}

// WebhookResult describes what a verified webhook delivery did.
type WebhookResult struct {
	EventID   string
	EventType string
	OrderID   string
	Outcome   string
}

// HandleWebhook verifies and applies a gateway delivery. Verification
// failures are returned and change nothing. Once verified, only
// infrastructure errors are returned; unknown orders, duplicates and
// conflicting outcomes are logged and acknowledged.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	evt, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		s.log.Warn("Rejected webhook delivery", zap.Error(err))
		return nil, err
	}

	result := &WebhookResult{EventID: evt.ID, EventType: evt.Type, OrderID: evt.OrderID, Outcome: WebhookOutcomeIgnored}

	var status models.PaymentStatus
	switch evt.Type {
	case gateway.EventPaymentSucceeded:
		status = models.PaymentSuccess
	case gateway.EventPaymentFailed:
		status = models.PaymentFailed
	default:
		s.log.Debug("Ignoring webhook event", zap.String("event_id", evt.ID), zap.String("event_type", evt.Type))
		return result, nil
	}

	fields := []zap.Field{
		zap.String("event_id", evt.ID),
		zap.String("event_type", evt.Type),
		zap.String("order_id", evt.OrderID),
		zap.String("payment_intent_id", evt.PaymentIntentID),
	}
	if evt.DecodeErr != nil {
		s.log.Error("Undecodable payment event acknowledged", append(fields, zap.Error(evt.DecodeErr))...)
		result.Outcome = repositories.SettleOrderNotFound.String()
		return result, nil
	}
	if evt.OrderID == "" {
		s.log.Warn("Payment event carries no order id", fields...)
		result.Outcome = repositories.SettleOrderNotFound.String()
		return result, nil
	}

	res, err := s.repo.SettlePayment(ctx, repositories.PaymentSettlement{
		OrderID:   evt.OrderID,
		Status:    status,
		TxnID:     evt.ChargeID,
		EventID:   evt.ID,
		EventType: evt.Type,
	})
	if err != nil {
		s.log.Error("Failed to apply payment event", append(fields, zap.Error(err))...)
		return nil, err
	}
	result.Outcome = res.Outcome.String()

	switch res.Outcome {
	case repositories.SettleApplied:
		s.log.Info("Order payment settled", append(fields, zap.String("payment_status", string(status)))...)
		if order, err := s.repo.GetByID(ctx, evt.OrderID); err == nil {
			publishOrderEvent(ctx, s.publisher, s.log, paymentRoutingKey(status), order)
		} else {
			s.log.Warn("Failed to reload settled order", append(fields, zap.Error(err))...)
		}
	case repositories.SettleDuplicateEvent:
		s.log.Info("Duplicate webhook event", fields...)
	case repositories.SettleAlreadyApplied:
		s.log.Info("Order payment already settled", fields...)
	case repositories.SettleOrderNotFound:
		s.log.Warn("Payment event for unknown order", fields...)
	case repositories.SettleConflict:
		s.log.Error("Conflicting payment outcome not applied",
			append(fields,
				zap.String("current_status", string(res.Current)),
				zap.String("requested_status", string(status)),
			)...)
	}
	return result, nil
}
