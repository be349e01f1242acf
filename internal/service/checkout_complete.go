package service

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
)

// commitOrder reserves stock, writes the order and its outbox event, and
// removes the owned cart, all in one unit of work. Store errors from
// CreateOrder are returned unclassified so duplicates can be told apart.
func (s *CheckoutServiceImpl) commitOrder(ctx context.Context, run *checkoutRun, in assembleInput, plan []stockReservation) (*domain.Order, error) {
	var created *domain.Order
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := reserveStock(ctx, tx, plan); err != nil {
			return err
		}

		if err := run.advance(ctx, domain.CheckoutStatePersisting); err != nil {
			return err
		}

		order, err := s.assembleOrder(in)
		if err != nil {
			return &InternalError{Op: "assemble order", Err: err}
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		if owned, ok := ownedCart(in.request.Source); ok {
			err := tx.DeleteCart(ctx, owned.OwnerID, owned.CartID)
			if errors.Is(err, repository.ErrCartNotFound) {
				// another checkout consumed the cart first
				return &NotFoundError{Resource: "cart", ID: owned.CartID}
			}
			if err != nil {
				return classify("delete cart", err)
			}
		}

		event, err := orderCreatedEvent(order)
		if err != nil {
			return &InternalError{Op: "build order event", Err: err}
		}
		if err := tx.EnqueueEvent(ctx, event); err != nil {
			return classify("enqueue order event", err)
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func ownedCart(src domain.CartSource) (domain.OwnedCart, bool) {
	switch src := src.(type) {
	case domain.OwnedCart:
		return src, true
	case *domain.OwnedCart:
		if src != nil {
			return *src, true
		}
	}
	return domain.OwnedCart{}, false
}
