package repositories

import (
	"context"

	"kedai/internal/models"

	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	GetVariant(ctx context.Context, id string) (*models.ProductVariant, error)
	// GetVariants returns the variants that exist, keyed by id. Unknown ids are absent.
	GetVariants(ctx context.Context, ids []string) (map[string]models.ProductVariant, error)
	UpdateVariantPrice(ctx context.Context, id string, price decimal.Decimal) (*models.ProductVariant, error)
}
