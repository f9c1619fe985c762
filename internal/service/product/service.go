package product

import (
	"context"
	"strings"

	"instant-checkout/internal/domain"
	productrepo "instant-checkout/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, storeID string) ([]domain.Product, error) {
	return s.repo.ListByStore(ctx, storeID)
}

func (s *Service) Get(ctx context.Context, storeID, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, storeID, id)
}

// Find resolves a product reference by id first and then by SKU.
func (s *Service) Find(ctx context.Context, storeID, id, sku string) (*domain.Product, error) {
	if id = strings.TrimSpace(id); id != "" {
		return s.repo.GetByID(ctx, storeID, id)
	}
	if sku = strings.TrimSpace(sku); sku != "" {
		return s.repo.GetBySKU(ctx, storeID, sku)
	}
	return nil, domain.ErrNotFound
}
