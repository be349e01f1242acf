package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
)

const (
	DefaultOrdersLimit = 20
	MaxOrdersLimit     = 100
)

// GetOrder returns an order of userID by its number. Orders of other owners
// and guest orders are reported as not found.
func (s *CheckoutServiceImpl) GetOrder(ctx context.Context, userID, number string) (*domain.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, &ValidationError{Field: "number", Reason: "is required"}
	}

	order, err := s.repo.GetOrderByNumber(ctx, number)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, &NotFoundError{Resource: "order", ID: number}
	}
	if err != nil {
		return nil, classify("get order", err)
	}
	if userID == "" || order.UserID == nil || *order.UserID != userID {
		return nil, &NotFoundError{Resource: "order", ID: number}
	}
	return order, nil
}

// ListOrders returns the caller's orders, newest first. A zero limit means
// DefaultOrdersLimit.
func (s *CheckoutServiceImpl) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId", Reason: "authentication is required"}
	}
	switch {
	case limit == 0:
		limit = DefaultOrdersLimit
	case limit < 0 || limit > MaxOrdersLimit:
		return nil, &ValidationError{Field: "limit", Reason: "must be between 1 and 100"}
	}
	if offset < 0 {
		return nil, &ValidationError{Field: "offset", Reason: "must not be negative"}
	}

	orders, err := s.repo.ListOrdersByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, classify("list orders", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}
