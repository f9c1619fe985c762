package order

import (
	"context"
	"sync"
	"time"

	"instant-checkout/internal/domain"
	"github.com/google/uuid"
)

// Memory is a Repository held in process. It does not see carts, so Create
// only records the order.
type Memory struct {
	mu     sync.Mutex
	orders []domain.Order
	seq    int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orders {
		if existing.IncrementID == o.IncrementID || existing.CartID == o.CartID {
			return domain.ErrAlreadyExists
		}
	}
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *Memory) GetByIncrementID(_ context.Context, storeID, incrementID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.StoreID == storeID && o.IncrementID == incrementID {
			out := o
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) ReserveOrderID(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return FormatIncrementID(m.seq), nil
}

// Orders returns a copy of every stored order.
func (m *Memory) Orders() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.orders...)
}
