package checkout

import (
	"context"

	"instant-checkout/internal/domain"
)

// Service runs instant checkouts, one Checkout per call.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Execute runs a fresh checkout for the store.
func (s *Service) Execute(ctx context.Context, store domain.Store, req Request) (*Result, error) {
	return New(s.deps, store).Execute(ctx, req)
}
