package services

import (
	"context"

	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned for negative prices.
var ErrInvalidPrice = errors.New("price must not be negative")

// ProductService serves the catalog reads and the few admin writes the
// checkout flow needs.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products with variants.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a product and its variants.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	for _, v := range product.Variants {
		if v.Price.IsNegative() || v.MRP.IsNegative() {
			return errors.Wrapf(ErrInvalidPrice, "variant %s", v.SKU)
		}
	}
	return s.repo.Create(ctx, product)
}

// UpdateVariantPrice changes a variant's live price. Existing orders keep
// the price they were placed at.
func (s *ProductService) UpdateVariantPrice(ctx context.Context, variantID string, price decimal.Decimal) (*models.ProductVariant, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	return s.repo.UpdateVariantPrice(ctx, variantID, price.Round(2))
}
