package payment

import (
	"context"

	"instant-checkout/internal/domain"
)

// Repository reads and configures the payment methods of a store.
type Repository interface {
	Get(ctx context.Context, storeID, code string) (*domain.PaymentMethod, error)
	List(ctx context.Context, storeID string) ([]domain.PaymentMethod, error)
	Upsert(ctx context.Context, storeID string, method domain.PaymentMethod) error
}
