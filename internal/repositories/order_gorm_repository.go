package repositories

import (
	"context"
	"fmt"
	"time"

	"kedai/internal/models"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Place runs the whole order write in a single transaction.
func (r *GORMOrderRepository) Place(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range order.Details {
			if err := reserveStock(tx, d.VariantID, d.Quantity); err != nil {
				return err
			}
		}
		if order.CouponCode != nil {
			if err := redeemCoupon(tx, *order.CouponCode); err != nil {
				return err
			}
		}
		if err := tx.Omit("OrderStatus").Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

// reserveStock decrements stock only if enough is on hand.
func reserveStock(tx *gorm.DB, variantID string, quantity int) error {
	res := tx.Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock for variant %s: %w", variantID, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var variant models.ProductVariant
	if err := tx.Select("id", "stock").First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("variant with ID %s: %w", variantID, models.ErrVariantNotFound)
		}
		return fmt.Errorf("failed to read stock for variant %s: %w", variantID, err)
	}
	return &models.InsufficientStockError{VariantID: variantID, Requested: quantity, Available: variant.Stock}
}

func restock(tx *gorm.DB, orderID string) error {
	var details []models.OrderDetail
	if err := tx.Where("order_id = ?", orderID).Find(&details).Error; err != nil {
		return fmt.Errorf("failed to load details of order %s: %w", orderID, err)
	}
	for _, d := range details {
		err := tx.Model(&models.ProductVariant{}).Where("id = ?", d.VariantID).
			UpdateColumn("stock", gorm.Expr("stock + ?", d.Quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to restock variant %s: %w", d.VariantID, err)
		}
	}
	return nil
}

// GetByID retrieves an order with its details and status.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Details").Preload("OrderStatus").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, models.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByCustomer returns a customer's orders, newest first.
func (r *GORMOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Details").Preload("OrderStatus").
		Where("customer_id = ?", customerID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for customer %s: %w", customerID, err)
	}
	return orders, nil
}

// SetPaymentID stores the gateway intent id on the order.
func (r *GORMOrderRepository) SetPaymentID(ctx context.Context, id, paymentID string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"payment_id": paymentID, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to set payment id on order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, models.ErrOrderNotFound)
	}
	return nil
}

// UpdateStatus changes the fulfillment status and tracking details.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, statusID uint, trackDetails string) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"order_status_id": statusID,
			"track_details":   trackDetails,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order with ID %s: %w", id, models.ErrOrderNotFound)
	}
	return r.GetByID(ctx, id)
}

// SettlePayment records the event id, then compare-and-swaps the payment
// status from pending. A failed payment returns its stock in the same
// transaction.
func (r *GORMOrderRepository) SettlePayment(ctx context.Context, s PaymentSettlement) (*SettleResult, error) {
	result := &SettleResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.EventID != "" {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ProcessedWebhookEvent{
				EventID:     s.EventID,
				EventType:   s.EventType,
				OrderID:     s.OrderID,
				ProcessedAt: time.Now(),
			})
			if res.Error != nil {
				return fmt.Errorf("failed to record event %s: %w", s.EventID, res.Error)
			}
			if res.RowsAffected == 0 {
				result.Outcome = SettleDuplicateEvent
				return nil
			}
		}

		updates := map[string]interface{}{"payment_status": s.Status, "updated_at": time.Now()}
		if s.TxnID != "" {
			updates["txn_id"] = s.TxnID
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", s.OrderID, models.PaymentPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to settle order %s: %w", s.OrderID, res.Error)
		}
		if res.RowsAffected == 1 {
			result.Outcome = SettleApplied
			if s.Status == models.PaymentFailed {
				return restock(tx, s.OrderID)
			}
			return nil
		}

		var current models.Order
		if err := tx.Select("id", "payment_status").First(&current, "id = ?", s.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Outcome = SettleOrderNotFound
				return nil
			}
			return fmt.Errorf("failed to read order %s: %w", s.OrderID, err)
		}
		result.Current = current.PaymentStatus
		if current.PaymentStatus == s.Status {
			result.Outcome = SettleAlreadyApplied
		} else {
			result.Outcome = SettleConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
