package service

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
)

// MockMetrics records checkout outcomes
type MockMetrics struct {
	mu      sync.Mutex
	Results []string
}

func (m *MockMetrics) ObserveCheckout(result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results = append(m.Results, result)
}

func (m *MockMetrics) Count(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.Results {
		if r == result {
			n++
		}
	}
	return n
}

// MockSettingsReader implements repository.SettingsReader for testing
type MockSettingsReader struct {
	Cfg   domain.DiscountConfiguration
	Err   error
	Calls int
}

func (m *MockSettingsReader) GetDiscountConfiguration(_ context.Context) (domain.DiscountConfiguration, error) {
	m.Calls++
	return m.Cfg, m.Err
}

// StaleStockStore reports more stock at read time than the ledger holds, so
// only the conditional decrement can reject the checkout.
type StaleStockStore struct {
	*store.MemoryStore
}

func (s StaleStockStore) GetVariant(ctx context.Context, id string) (*domain.ProductVariant, error) {
	v, err := s.MemoryStore.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Stock = 1000
	return v, nil
}

// FailingOrderStore fails every order lookup with Err.
type FailingOrderStore struct {
	*store.MemoryStore
	Err error
}

func (s FailingOrderStore) GetOrderByIdempotencyKey(_ context.Context, _ string) (*domain.Order, error) {
	return nil, s.Err
}
