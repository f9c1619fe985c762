package customer

import (
	"context"
	"fmt"

	"instant-checkout/internal/domain"
)

// DefaultBillingAddress returns the customer's default billing address.
func (s *Service) DefaultBillingAddress(_ context.Context, c *domain.Customer) (*domain.CustomerAddress, error) {
	return defaultAddress(c, "billing")
}

// DefaultShippingAddress returns the customer's default shipping address.
func (s *Service) DefaultShippingAddress(_ context.Context, c *domain.Customer) (*domain.CustomerAddress, error) {
	return defaultAddress(c, "shipping")
}

// defaultAddress reads the address from the customer value it is given; no
// lookup is made, so the caller decides which customer record counts.
func defaultAddress(c *domain.Customer, kind string) (*domain.CustomerAddress, error) {
	if c.IsGuest() {
		return nil, domain.ErrNotFound
	}
	id := c.DefaultBillingAddressID
	if kind == "shipping" {
		id = c.DefaultShippingAddressID
	}
	addr, ok := c.Address(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, domain.ErrNoDefaultAddress)
	}
	return &addr, nil
}
