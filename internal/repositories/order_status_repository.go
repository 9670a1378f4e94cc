package repositories

import (
	"context"
	"fmt"

	"kedai/internal/models"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
)

// GORMOrderStatusRepository is a GORM implementation of OrderStatusRepository.
type GORMOrderStatusRepository struct {
	db *gorm.DB
}

// NewGORMOrderStatusRepository creates a new instance of GORMOrderStatusRepository.
func NewGORMOrderStatusRepository(db *gorm.DB) *GORMOrderStatusRepository {
	return &GORMOrderStatusRepository{db: db}
}

// GetDefault returns the status new orders start in.
func (r *GORMOrderStatusRepository) GetDefault(ctx context.Context) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.db.WithContext(ctx).First(&status, "is_default = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("default order status: %w", models.ErrStatusNotFound)
		}
		return nil, fmt.Errorf("failed to get default order status: %w", err)
	}
	return &status, nil
}

// GetByID retrieves a status by id.
func (r *GORMOrderStatusRepository) GetByID(ctx context.Context, id uint) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.db.WithContext(ctx).First(&status, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order status %d: %w", id, models.ErrStatusNotFound)
		}
		return nil, fmt.Errorf("failed to get order status %d: %w", id, err)
	}
	return &status, nil
}

// GetAll lists the vocabulary in id order.
func (r *GORMOrderStatusRepository) GetAll(ctx context.Context) ([]models.OrderStatus, error) {
	var statuses []models.OrderStatus
	if err := r.db.WithContext(ctx).Order("id").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to list order statuses: %w", err)
	}
	return statuses, nil
}
