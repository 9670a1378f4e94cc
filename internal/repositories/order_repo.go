package repositories

import (
	"context"

	"kedai/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Place persists the order and its details in one transaction, reserving
	// stock for every line and redeeming the order's coupon. Any failure
	// leaves nothing behind.
	Place(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	SetPaymentID(ctx context.Context, id, paymentID string) error
	UpdateStatus(ctx context.Context, id string, statusID uint, trackDetails string) (*models.Order, error)
	// SettlePayment moves a pending order to a terminal payment status.
	SettlePayment(ctx context.Context, s PaymentSettlement) (*SettleResult, error)
}

// OrderStatusRepository reads the fulfillment status vocabulary.
type OrderStatusRepository interface {
	GetDefault(ctx context.Context) (*models.OrderStatus, error)
	GetByID(ctx context.Context, id uint) (*models.OrderStatus, error)
	GetAll(ctx context.Context) ([]models.OrderStatus, error)
}

// PaymentSettlement describes one terminal payment outcome.
type PaymentSettlement struct {
	OrderID string
	Status  models.PaymentStatus
	TxnID   string
	// EventID is the gateway event id; empty for settlements decided locally.
	EventID   string
	EventType string
}

// SettleOutcome tells what SettlePayment did.
type SettleOutcome int

const (
	// SettleApplied means the order moved from pending to the requested status.
	SettleApplied SettleOutcome = iota
	// SettleDuplicateEvent means the event id was processed before.
	SettleDuplicateEvent
	// SettleOrderNotFound means no order has the given id.
	SettleOrderNotFound
	// SettleAlreadyApplied means the order already has the requested status.
	SettleAlreadyApplied
	// SettleConflict means the order already has a different terminal status.
	SettleConflict
)

func (o SettleOutcome) String() string {
	switch o {
	case SettleApplied:
		return "applied"
	case SettleDuplicateEvent:
		return "duplicate_event"
	case SettleOrderNotFound:
		return "order_not_found"
	case SettleAlreadyApplied:
		return "already_applied"
	case SettleConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// SettleResult is returned by SettlePayment.
type SettleResult struct {
	Outcome SettleOutcome
	// Current is the payment status found on the order when nothing was applied.
	Current models.PaymentStatus
}
