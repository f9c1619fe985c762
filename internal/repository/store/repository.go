package store

import (
	"context"

	"instant-checkout/internal/domain"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Store, error)
	Create(ctx context.Context, store domain.Store) (*domain.Store, error)
}
