package repositories

import (
	"context"

	"kedai/internal/models"
)

// UserRepository defines the interface for account and customer profile data access.
type UserRepository interface {
	// CreateWithCustomer creates the account and then its customer profile
	// in one transaction.
	CreateWithCustomer(ctx context.Context, user *models.User, customer *models.Customer) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetCustomerByUserID(ctx context.Context, userID string) (*models.Customer, error)
}
