package repositories

import (
	"context"

	"kedai/internal/models"
)

// CartRepository defines the interface for cart line storage.
type CartRepository interface {
	// AddItem inserts the line or, if (shopper, variant) already exists,
	// increments its quantity in the same statement.
	AddItem(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	GetLine(ctx context.Context, shopperID, variantID string) (*models.CartLine, error)
	SetQuantity(ctx context.Context, lineID string, quantity int) error
	DeleteLine(ctx context.Context, lineID string) error
	ListByShopper(ctx context.Context, shopperID string) ([]models.CartLine, error)
	Clear(ctx context.Context, shopperID string) (int64, error)
}
