package repositories

import (
	"context"
	"fmt"

	"kedai/internal/models"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
)

// CouponRepository defines the interface for coupon data access.
type CouponRepository interface {
	GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
}

// GORMCouponRepository is a GORM implementation of CouponRepository.
type GORMCouponRepository struct {
	db *gorm.DB
}

// NewGORMCouponRepository creates a new instance of GORMCouponRepository.
func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{db: db}
}

// GetActiveByCode retrieves an active coupon by its code.
func (r *GORMCouponRepository) GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).First(&coupon, "code = ? AND active = ?", code, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon %s: %w", code, err)
	}
	return &coupon, nil
}

// Create creates a new coupon.
func (r *GORMCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// redeemCoupon counts one use of a coupon inside an order transaction.
// A one-time coupon that was already used is left untouched and
// ErrCouponUnavailable is returned.
func redeemCoupon(tx *gorm.DB, code string) error {
	res := tx.Model(&models.Coupon{}).
		Where("code = ? AND active = ? AND (is_one_time = ? OR times_used = 0)", code, true, false).
		UpdateColumn("times_used", gorm.Expr("times_used + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to redeem coupon %s: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrCouponUnavailable
	}
	return nil
}
