package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (t *pgTx) CurrentStock(ctx context.Context, variantID string) (int, error) {
	var stock int
	err := t.tx.QueryRowContext(ctx, `SELECT stock FROM product_variants WHERE id = $1`, variantID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVariantNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query stock: %w", err)
	}
	return stock, nil
}

// Reserve is a single conditional decrement. The row lock it takes is held
// until the surrounding transaction ends.
func (t *pgTx) Reserve(ctx context.Context, variantID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("reserve %s: quantity must be positive, got %d", variantID, quantity)
	}

	var remaining int
	err := t.tx.QueryRowContext(ctx,
		`UPDATE product_variants SET stock = stock - $1 WHERE id = $2 AND stock >= $1 RETURNING stock`,
		quantity, variantID,
	).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("reserve stock: %w", err)
	}

	available, stockErr := t.CurrentStock(ctx, variantID)
	if stockErr != nil {
		return 0, stockErr
	}
	return 0, &StockError{VariantID: variantID, Available: available, Requested: quantity}
}
