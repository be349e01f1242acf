package http

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
)

// MockCheckoutService implements service.CheckoutService for handler tests
type MockCheckoutService struct {
	CheckoutResp *domain.CheckoutResponse
	Order        *domain.Order
	Orders       []*domain.Order
	Err          error

	LastRequest *domain.CheckoutRequest
	LastUserID  string
	LastNumber  string
	LastLimit   int
	LastOffset  int
}

func (m *MockCheckoutService) Checkout(_ context.Context, req *domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.CheckoutResp, nil
}

func (m *MockCheckoutService) GetOrder(_ context.Context, userID, number string) (*domain.Order, error) {
	m.LastUserID = userID
	m.LastNumber = number
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

func (m *MockCheckoutService) ListOrders(_ context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	m.LastUserID = userID
	m.LastLimit = limit
	m.LastOffset = offset
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Orders, nil
}

type requestObservation struct {
	Handler string
	Method  string
	Status  int
}

// MockObserver records request observations
type MockObserver struct {
	mu           sync.Mutex
	Observations []requestObservation
}

func (m *MockObserver) ObserveRequest(handler, method string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Observations = append(m.Observations, requestObservation{Handler: handler, Method: method, Status: status})
}
