package payment

import (
	"context"
	"io"
	"log"

	"instant-checkout/internal/domain"
	paymentrepo "instant-checkout/internal/repository/payment"
)

// Catalog resolves the payment methods configured for a store.
type Catalog struct {
	repo   paymentrepo.Repository
	logger *log.Logger
}

func New(repo paymentrepo.Repository, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Catalog{repo: repo, logger: logger}
}

// Resolve returns the method with the given code; unknown codes yield domain.ErrNotFound.
func (c *Catalog) Resolve(ctx context.Context, storeID, code string) (*domain.PaymentMethod, error) {
	m, err := c.repo.Get(ctx, storeID, code)
	if err != nil {
		c.logger.Printf("payment catalog: resolve store_id=%s code=%s err=%v", storeID, code, err)
		return nil, err
	}
	return m, nil
}

// Available lists the methods that can pay for the cart, in display order.
func (c *Catalog) Available(ctx context.Context, storeID string, cart *domain.Cart) ([]domain.PaymentMethod, error) {
	methods, err := c.repo.List(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PaymentMethod, 0, len(methods))
	for i := range methods {
		if methods[i].IsAvailable(cart) {
			out = append(out, methods[i])
		}
	}
	return out, nil
}

// DefaultMethods is the payment configuration of a new store.
func DefaultMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{Code: domain.FreePaymentMethodCode, Title: "No Payment Information Required", Active: true, SortOrder: 1},
		{Code: "checkmo", Title: "Check / Money order", Active: true, SortOrder: 10},
		{Code: "banktransfer", Title: "Bank Transfer Payment", Active: true, SortOrder: 20},
		{Code: "cashondelivery", Title: "Cash On Delivery", Active: true, MaxTotalCents: int64Ptr(100000), SortOrder: 30},
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
