package cart

import (
	"context"
	"sync"
	"time"

	"instant-checkout/internal/domain"
	"github.com/google/uuid"
)

// Memory is a Repository kept in process memory. Saved carts are copied so
// callers cannot mutate stored state without saving again.
type Memory struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
	saves int
}

func NewMemory() *Memory {
	return &Memory{carts: make(map[string]domain.Cart)}
}

func (m *Memory) New(store domain.Store) *domain.Cart {
	return domain.NewCart(store)
}

func (m *Memory) Save(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if cart.ID == "" {
		cart.ID = uuid.NewString()
		cart.CreatedAt = now
	} else if _, ok := m.carts[cart.ID]; !ok {
		return domain.ErrNotFound
	}
	cart.UpdatedAt = now
	for i := range cart.Lines {
		line := &cart.Lines[i]
		line.CartID = cart.ID
		if line.ID == "" {
			line.ID = uuid.NewString()
			line.CreatedAt = now
		}
	}
	m.carts[cart.ID] = clone(*cart)
	m.saves++
	return nil
}

func (m *Memory) GetByID(_ context.Context, storeID, id string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.carts[id]
	if !ok || c.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	out := clone(c)
	return &out, nil
}

func (m *Memory) GetActiveByCustomer(_ context.Context, storeID, customerID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *domain.Cart
	for _, c := range m.carts {
		if c.StoreID != storeID || !c.Active || c.CustomerID == nil || *c.CustomerID != customerID {
			continue
		}
		if found == nil || c.CreatedAt.After(found.CreatedAt) {
			out := clone(c)
			found = &out
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

// Saves returns the number of successful writes.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func clone(c domain.Cart) domain.Cart {
	out := c
	if c.CustomerID != nil {
		id := *c.CustomerID
		out.CustomerID = &id
	}
	if c.ReservedOrderID != nil {
		id := *c.ReservedOrderID
		out.ReservedOrderID = &id
	}
	if c.BillingAddress != nil {
		a := *c.BillingAddress
		out.BillingAddress = &a
	}
	if c.ShippingAddress != nil {
		a := *c.ShippingAddress
		out.ShippingAddress = &a
	}
	out.Lines = append([]domain.CartLine(nil), c.Lines...)
	for i := range out.Lines {
		out.Lines[i].Options = copyMap(c.Lines[i].Options)
		out.Lines[i].Snapshot = copyMap(c.Lines[i].Snapshot)
	}
	return out
}

func copyMap[V any](in map[string]V) map[string]V {
	if in == nil {
		return nil
	}
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
