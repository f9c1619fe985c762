package order

import (
	"context"
	"errors"
	"testing"

	"instant-checkout/internal/domain"
	orderrepo "instant-checkout/internal/repository/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	err    error
	orders []*domain.Order
}

func (n *stubNotifier) OrderPlaced(_ context.Context, o *domain.Order) error {
	n.orders = append(n.orders, o)
	return n.err
}

func placeableCart() *domain.Cart {
	customerID := "cust-1"
	return &domain.Cart{
		ID:              "cart-1",
		StoreID:         "store-1",
		CustomerID:      &customerID,
		CustomerEmail:   "a@example.com",
		Currency:        "USD",
		Active:          true,
		BillingAddress:  &domain.Address{CustomerID: customerID},
		ShippingAddress: &domain.Address{CustomerID: customerID, City: "Oslo"},
		PaymentMethod:   "checkmo",
		Lines:           []domain.CartLine{{ProductID: "p-1", Quantity: 2, UnitPriceCents: 500, TotalCents: 1000}},
		ItemsQty:        2,
		TotalCents:      1000,
	}
}

func TestPlace_WritesOrderAndNotifies(t *testing.T) {
	repo := orderrepo.NewMemory()
	n := &stubNotifier{}
	p := New(repo, n, nil)
	cart := placeableCart()

	o, err := p.Place(context.Background(), cart)
	require.NoError(t, err)
	assert.Equal(t, "000000001", o.IncrementID)
	assert.Equal(t, domain.OrderStateNew, o.State)
	assert.Equal(t, int64(1000), o.TotalCents)
	require.Len(t, o.Lines, 1)
	assert.False(t, cart.Active)
	require.NotNil(t, cart.ReservedOrderID)
	assert.Equal(t, o.IncrementID, *cart.ReservedOrderID)
	assert.Len(t, n.orders, 1)
	assert.Len(t, repo.Orders(), 1)
}

func TestPlace_ReusesReservedOrderID(t *testing.T) {
	p := New(orderrepo.NewMemory(), &stubNotifier{}, nil)
	cart := placeableCart()
	reserved := "000000777"
	cart.ReservedOrderID = &reserved

	o, err := p.Place(context.Background(), cart)
	require.NoError(t, err)
	assert.Equal(t, reserved, o.IncrementID)
}

func TestPlace_NotificationFailureIsNotAnError(t *testing.T) {
	p := New(orderrepo.NewMemory(), &stubNotifier{err: errors.New("broker down")}, nil)

	o, err := p.Place(context.Background(), placeableCart())
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *domain.Cart)
		want   error
	}{
		{"unsaved", func(c *domain.Cart) { c.ID = "" }, ErrInvalidCart},
		{"inactive", func(c *domain.Cart) { c.Active = false }, domain.ErrCartInactive},
		{"no customer", func(c *domain.Cart) { c.CustomerID = nil }, ErrInvalidCart},
		{"empty", func(c *domain.Cart) { c.Lines = nil }, ErrInvalidCart},
		{"no billing", func(c *domain.Cart) { c.BillingAddress = nil }, ErrInvalidCart},
		{"no shipping", func(c *domain.Cart) { c.ShippingAddress = nil }, ErrInvalidCart},
		{"no payment", func(c *domain.Cart) { c.PaymentMethod = "" }, ErrInvalidCart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart := placeableCart()
			tc.mutate(cart)
			assert.ErrorIs(t, Validate(cart), tc.want)
		})
	}

	virtual := placeableCart()
	virtual.ShippingAddress = nil
	virtual.Lines[0].Virtual = true
	assert.NoError(t, Validate(virtual))
}

func TestGetForCustomer(t *testing.T) {
	repo := orderrepo.NewMemory()
	p := New(repo, &stubNotifier{}, nil)
	ctx := context.Background()

	o, err := p.Place(ctx, placeableCart())
	require.NoError(t, err)

	got, err := p.GetForCustomer(ctx, "store-1", "cust-1", o.IncrementID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = p.GetForCustomer(ctx, "store-1", "cust-2", o.IncrementID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = p.GetForCustomer(ctx, "store-2", "cust-1", o.IncrementID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
