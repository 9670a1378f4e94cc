package services

import (
	"context"
	"encoding/json"
	"time"

	"kedai/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Routing keys of the order events.
const (
	RoutingOrderCreated       = "order.created"
	RoutingOrderStatusUpdated = "order.status_updated"
	RoutingPaymentSucceeded   = "order.payment_succeeded"
	RoutingPaymentFailed      = "order.payment_failed"
)

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderEvent is the body of every order event.
type OrderEvent struct {
	OrderID       string               `json:"order_id"`
	CustomerID    string               `json:"customer_id"`
	OrderStatusID uint                 `json:"order_status_id"`
	PaymentType   models.PaymentType   `json:"payment_type"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	TotalAmt      decimal.Decimal      `json:"total_amt"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// publishOrderEvent is best effort: failures are logged and never returned.
func publishOrderEvent(ctx context.Context, pub EventPublisher, log *zap.Logger, routingKey string, order *models.Order) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(OrderEvent{
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		OrderStatusID: order.OrderStatusID,
		PaymentType:   order.PaymentType,
		PaymentStatus: order.PaymentStatus,
		TotalAmt:      order.TotalAmt,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Warn("Failed to marshal order event", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if err := pub.Publish(ctx, routingKey, body); err != nil {
		log.Warn("Failed to publish order event",
			zap.String("routing_key", routingKey),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
