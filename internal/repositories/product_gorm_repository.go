package repositories

import (
	"context"
	"github.com/go-faster/errors"
	"fmt"

	"kedai/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products with their variants.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Preload("Variants").Order("created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a product together with its variants.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for i := range product.Variants {
		if product.Variants[i].ID == "" {
			product.Variants[i].ID = uuid.New().String()
		}
		product.Variants[i].ProductID = product.ID
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetVariant retrieves a single variant by its ID.
func (r *GORMProductRepository) GetVariant(ctx context.Context, id string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("variant with ID %s: %w", id, models.ErrVariantNotFound)
		}
		return nil, fmt.Errorf("failed to get variant by ID %s: %w", id, err)
	}
	return &variant, nil
}

// GetVariants batch-loads variants by id.
func (r *GORMProductRepository) GetVariants(ctx context.Context, ids []string) (map[string]models.ProductVariant, error) {
	result := make(map[string]models.ProductVariant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var variants []models.ProductVariant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to get variants: %w", err)
	}
	for _, v := range variants {
		result[v.ID] = v
	}
	return result, nil
}

// UpdateVariantPrice changes the live catalog price of a variant.
func (r *GORMProductRepository) UpdateVariantPrice(ctx context.Context, id string, price decimal.Decimal) (*models.ProductVariant, error) {
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).Where("id = ?", id).Update("price", price)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update variant price: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("variant with ID %s: %w", id, models.ErrVariantNotFound)
	}
	return r.GetVariant(ctx, id)
}
