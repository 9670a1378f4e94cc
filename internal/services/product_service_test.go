package services_test

import (
	"context"
	"fmt"
	"testing"

	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetVariant(ctx context.Context, id string) (*models.ProductVariant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductVariant), args.Error(1)
}

func (m *MockProductRepository) GetVariants(ctx context.Context, ids []string) (map[string]models.ProductVariant, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]models.ProductVariant), args.Error(1)
}

func (m *MockProductRepository) UpdateVariantPrice(ctx context.Context, id string, price decimal.Decimal) (*models.ProductVariant, error) {
	args := m.Called(ctx, id, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductVariant), args.Error(1)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Variants: []models.ProductVariant{{ID: "v1", Price: decimal.NewFromInt(10), Stock: 100}}},
		{ID: "2", Name: "Product B"},
	}
	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	expectedProduct := &models.Product{ID: "1", Name: "Product A"}

	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99: %w", models.ErrProductNotFound)).Once()
	product, err = service.GetProductByID(ctx, "99")
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, models.ErrProductNotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	newProduct := &models.Product{Name: "New Product", Variants: []models.ProductVariant{
		{SKU: "NP-1", Price: decimal.NewFromInt(50), Stock: 20},
	}}

	mockRepo.On("Create", ctx, newProduct).Return(nil).Once()
	assert.NoError(t, service.CreateProduct(ctx, newProduct))

	mockRepo.On("Create", ctx, newProduct).Return(fmt.Errorf("database error")).Once()
	err := service.CreateProduct(ctx, newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)

	// Negative prices never reach the repository.
	bad := &models.Product{Name: "Bad", Variants: []models.ProductVariant{{SKU: "B-1", Price: decimal.NewFromInt(-1)}}}
	assert.True(t, errors.Is(service.CreateProduct(ctx, bad), services.ErrInvalidPrice))
	mockRepo.AssertNotCalled(t, "Create", ctx, bad)
}

func TestProductService_UpdateVariantPrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	price := decimal.RequireFromString("749.999")
	updated := &models.ProductVariant{ID: "v1", Price: decimal.RequireFromString("750")}
	mockRepo.On("UpdateVariantPrice", ctx, "v1", price.Round(2)).Return(updated, nil).Once()

	got, err := service.UpdateVariantPrice(ctx, "v1", price)
	assert.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = service.UpdateVariantPrice(ctx, "v1", decimal.NewFromInt(-5))
	assert.True(t, errors.Is(err, services.ErrInvalidPrice))
	mockRepo.AssertExpectations(t)
}
