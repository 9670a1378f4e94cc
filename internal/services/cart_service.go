package services

import (
	"context"

	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// CartService manages shopper carts. Stock is only checked when a quantity
// is set explicitly; adding items defers the check to checkout.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// AddItemInput is one add-to-cart request.
type AddItemInput struct {
	ShopperID   string
	ShopperKind string
	ProductID   string
	VariantID   string
	Quantity    int
}

// QuantityUpdate is the outcome of UpdateQuantity. Line is nil when Removed.
type QuantityUpdate struct {
	Line    *models.CartLine
	Removed bool
}

// CartTotal is priced live against the catalog.
type CartTotal struct {
	Total     decimal.Decimal
	ItemCount int
	Items     []models.CartLine
}

// AddItem adds quantity of a variant, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, in AddItemInput) (*models.CartLine, error) {
	variant, err := s.products.GetVariant(ctx, in.VariantID)
	if err != nil {
		return nil, err
	}
	if in.ProductID != "" && in.ProductID != variant.ProductID {
		return nil, models.ErrVariantMismatch
	}
	kind := in.ShopperKind
	if kind == "" {
		kind = models.ShopperGuest
	}

	return s.carts.AddItem(ctx, &models.CartLine{
		ShopperID:   in.ShopperID,
		ShopperKind: kind,
		ProductID:   variant.ProductID,
		VariantID:   variant.ID,
		Quantity:    in.Quantity,
	})
}

// UpdateQuantity overwrites a line's quantity. A quantity of zero or less
// removes the line; more than the variant's stock is refused.
func (s *CartService) UpdateQuantity(ctx context.Context, shopperID, variantID string, quantity int) (*QuantityUpdate, error) {
	line, err := s.carts.GetLine(ctx, shopperID, variantID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.carts.DeleteLine(ctx, line.ID); err != nil {
			return nil, err
		}
		return &QuantityUpdate{Removed: true}, nil
	}

	variant, err := s.products.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if quantity > variant.Stock {
		return nil, &models.OutOfStockError{VariantID: variantID, Available: variant.Stock}
	}

	if err := s.carts.SetQuantity(ctx, line.ID, quantity); err != nil {
		return nil, err
	}
	line.Quantity = quantity
	line.Variant = variant
	return &QuantityUpdate{Line: line}, nil
}

// Total prices the shopper's cart at current catalog prices.
func (s *CartService) Total(ctx context.Context, shopperID string) (*CartTotal, error) {
	lines, err := s.carts.ListByShopper(ctx, shopperID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}

	total := decimal.Zero
	for _, line := range lines {
		if line.Variant == nil {
			continue
		}
		total = total.Add(line.Variant.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return &CartTotal{Total: total, ItemCount: len(lines), Items: lines}, nil
}

// Clear empties the shopper's cart.
func (s *CartService) Clear(ctx context.Context, shopperID string) (int64, error) {
	return s.carts.Clear(ctx, shopperID)
}

// RemoveLine deletes one line by its id, whoever owns it.
func (s *CartService) RemoveLine(ctx context.Context, lineID string) error {
	return s.carts.DeleteLine(ctx, lineID)
}
