package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
)

// RunInTx runs fn with the store locked. Every write made through the Tx is
// journaled and undone in reverse order if fn fails.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{s: s}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type memTx struct {
	s    *MemoryStore
	undo []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) CurrentStock(ctx context.Context, variantID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, ok := t.s.variants[variantID]
	if !ok {
		return 0, repository.ErrVariantNotFound
	}
	return v.Stock, nil
}

func (t *memTx) Reserve(ctx context.Context, variantID string, quantity int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("reserve %s: quantity must be positive, got %d", variantID, quantity)
	}
	v, ok := t.s.variants[variantID]
	if !ok {
		return 0, repository.ErrVariantNotFound
	}
	if v.Stock < quantity {
		return 0, &repository.StockError{VariantID: variantID, Available: v.Stock, Requested: quantity}
	}
	v.Stock -= quantity
	t.undo = append(t.undo, func() { v.Stock += quantity })
	return v.Stock, nil
}

func (t *memTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := t.s.ordersByNumber[order.Number]; exists {
		return repository.ErrDuplicateOrderNumber
	}
	if order.IdempotencyKey != nil {
		if _, exists := t.s.ordersByKey[*order.IdempotencyKey]; exists {
			return repository.ErrDuplicateIdempotencyKey
		}
	}

	stored := cloneOrder(order)
	t.s.orders[stored.ID] = stored
	t.s.ordersByNumber[stored.Number] = stored.ID
	if stored.IdempotencyKey != nil {
		t.s.ordersByKey[*stored.IdempotencyKey] = stored.ID
	}
	t.undo = append(t.undo, func() {
		delete(t.s.orders, stored.ID)
		delete(t.s.ordersByNumber, stored.Number)
		if stored.IdempotencyKey != nil {
			delete(t.s.ordersByKey, *stored.IdempotencyKey)
		}
	})
	return nil
}

func (t *memTx) DeleteCart(ctx context.Context, ownerID, cartID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, ok := t.s.carts[cartID]
	if !ok || c.UserID != ownerID {
		return repository.ErrCartNotFound
	}
	delete(t.s.carts, cartID)
	t.undo = append(t.undo, func() { t.s.carts[cartID] = c })
	return nil
}

func (t *memTx) EnqueueEvent(ctx context.Context, event *repository.OutboxEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.nextOutboxID++
	event.ID = t.s.nextOutboxID
	event.CreatedAt = time.Now().UTC()
	stored := *event
	t.s.outbox = append(t.s.outbox, &stored)
	n := len(t.s.outbox)
	t.undo = append(t.undo, func() {
		t.s.outbox = t.s.outbox[:n-1]
		t.s.nextOutboxID--
	})
	return nil
}
