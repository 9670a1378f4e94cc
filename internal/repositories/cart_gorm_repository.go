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

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// AddItem upserts on the (shopper_id, variant_id) unique index.
func (r *GORMCartRepository) AddItem(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shopper_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(line).Error
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return r.GetLine(ctx, line.ShopperID, line.VariantID)
}

// GetLine retrieves the line of a shopper for a variant.
func (r *GORMCartRepository) GetLine(ctx context.Context, shopperID, variantID string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).Preload("Variant").
		First(&line, "shopper_id = ? AND variant_id = ?", shopperID, variantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCartLineNotFound
		}
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	return &line, nil
}

// SetQuantity overwrites the quantity of a line.
func (r *GORMCartRepository) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartLine{}).Where("id = ?", lineID).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line %s: %w", lineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrCartLineNotFound
	}
	return nil
}

// DeleteLine deletes a line by its own id.
func (r *GORMCartRepository) DeleteLine(ctx context.Context, lineID string) error {
	res := r.db.WithContext(ctx).Delete(&models.CartLine{}, "id = ?", lineID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line %s: %w", lineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrCartLineNotFound
	}
	return nil
}

// ListByShopper returns the shopper's lines with their live variants.
func (r *GORMCartRepository) ListByShopper(ctx context.Context, shopperID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).Preload("Variant").
		Where("shopper_id = ?", shopperID).Order("created_at").Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart for shopper %s: %w", shopperID, err)
	}
	return lines, nil
}

// Clear deletes every line of a shopper and reports how many were removed.
func (r *GORMCartRepository) Clear(ctx context.Context, shopperID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.CartLine{}, "shopper_id = ?", shopperID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart for shopper %s: %w", shopperID, res.Error)
	}
	return res.RowsAffected, nil
}
