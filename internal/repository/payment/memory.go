package payment

import (
	"context"
	"sort"
	"sync"

	"instant-checkout/internal/domain"
)

// Memory is a Repository held in process, used by the CLI dry runs and tests.
type Memory struct {
	mu      sync.RWMutex
	methods map[string]map[string]domain.PaymentMethod
}

func NewMemory() *Memory {
	return &Memory{methods: make(map[string]map[string]domain.PaymentMethod)}
}

func (m *Memory) Get(_ context.Context, storeID, code string) (*domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	method, ok := m.methods[storeID][code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &method, nil
}

func (m *Memory) List(_ context.Context, storeID string) ([]domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.PaymentMethod, 0, len(m.methods[storeID]))
	for _, method := range m.methods[storeID] {
		out = append(out, method)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (m *Memory) Upsert(_ context.Context, storeID string, method domain.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.methods[storeID] == nil {
		m.methods[storeID] = make(map[string]domain.PaymentMethod)
	}
	m.methods[storeID][method.Code] = method
	return nil
}
