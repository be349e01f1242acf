package service

import (
	"context"
	"errors"
	"sort"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
)

type stockReservation struct {
	VariantID string
	Quantity  int
	line      *domain.PricedLine // first line for the variant, used in error reports
}

// reservationPlan merges lines of the same variant and orders them by variant
// id so concurrent checkouts lock rows in the same order.
func reservationPlan(lines []domain.PricedLine) []stockReservation {
	byVariant := make(map[string]*stockReservation, len(lines))
	for i := range lines {
		line := &lines[i]
		if r, ok := byVariant[line.VariantID]; ok {
			r.Quantity += line.Quantity
			continue
		}
		byVariant[line.VariantID] = &stockReservation{VariantID: line.VariantID, Quantity: line.Quantity, line: line}
	}

	plan := make([]stockReservation, 0, len(byVariant))
	for _, r := range byVariant {
		plan = append(plan, *r)
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].VariantID < plan[j].VariantID })
	return plan
}

// precheckStock rejects the checkout early using the stock seen at
// resolution time. It is advisory: reserveStock is the authority.
func precheckStock(plan []stockReservation) error {
	for _, r := range plan {
		if r.line.Stock < r.Quantity {
			return insufficientStock(r, r.line.Stock)
		}
	}
	return nil
}

// reserveStock decrements stock for every planned variant inside tx.
func reserveStock(ctx context.Context, tx repository.Tx, plan []stockReservation) error {
	for _, r := range plan {
		_, err := tx.Reserve(ctx, r.VariantID, r.Quantity)
		if err == nil {
			continue
		}
		var stockErr *repository.StockError
		if errors.As(err, &stockErr) {
			return insufficientStock(r, stockErr.Available)
		}
		if errors.Is(err, repository.ErrVariantNotFound) {
			return &NotFoundError{Resource: "variant", ID: r.VariantID}
		}
		return classify("reserve stock", err)
	}
	return nil
}

func insufficientStock(r stockReservation, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductTitle: r.line.ProductTitle,
		SKU:          r.line.SKU,
		Available:    max(available, 0),
		Requested:    r.Quantity,
	}
}
