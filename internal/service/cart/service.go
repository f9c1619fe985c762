package cart

import (
	"context"

	"instant-checkout/internal/domain"
)

// Service exposes carts to their owners.
type Service struct {
	repo cartRepo
}

type cartRepo interface {
	GetByID(ctx context.Context, storeID, id string) (*domain.Cart, error)
	GetActiveByCustomer(ctx context.Context, storeID, customerID string) (*domain.Cart, error)
}

func New(repo cartRepo) *Service {
	return &Service{repo: repo}
}

// GetForCustomer returns the cart only when it belongs to the customer; other
// carts are reported as missing.
func (s *Service) GetForCustomer(ctx context.Context, storeID, customerID, cartID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByID(ctx, storeID, cartID)
	if err != nil {
		return nil, err
	}
	if cart.CustomerID == nil || *cart.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return cart, nil
}

func (s *Service) GetActive(ctx context.Context, storeID, customerID string) (*domain.Cart, error) {
	return s.repo.GetActiveByCustomer(ctx, storeID, customerID)
}
