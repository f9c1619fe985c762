package order

import (
	"context"

	"instant-checkout/internal/domain"
)

// Repository writes orders and hands out order numbers.
type Repository interface {
	// Create stores the order and deactivates its cart atomically. The
	// order's ID and CreatedAt are filled in on success.
	Create(ctx context.Context, order *domain.Order) error
	GetByIncrementID(ctx context.Context, storeID, incrementID string) (*domain.Order, error)
	ReserveOrderID(ctx context.Context, storeID string) (string, error)
}
