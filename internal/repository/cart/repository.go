package cart

import (
	"context"

	"instant-checkout/internal/domain"
)

// Repository creates, persists and fetches carts.
type Repository interface {
	New(store domain.Store) *domain.Cart
	Save(ctx context.Context, cart *domain.Cart) error
	GetByID(ctx context.Context, storeID, id string) (*domain.Cart, error)
	GetActiveByCustomer(ctx context.Context, storeID, customerID string) (*domain.Cart, error)
}
