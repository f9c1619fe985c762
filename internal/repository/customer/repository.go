package customer

import (
	"context"

	"instant-checkout/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, storeID, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Customer, error)
}
