package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

// GetCart returns the cart only when it belongs to ownerID.
func (r *Repository) GetCart(ctx context.Context, ownerID, cartID string) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE id = $1 AND user_id = $2`,
		cartID, ownerID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, variant_id, quantity, price, added_at
		 FROM cart_items WHERE cart_id = $1 ORDER BY added_at, variant_id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.VariantID, &item.Quantity, &item.Price, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return &c, nil
}

// DeleteCart removes the cart and, by cascade, its items. A cart that is
// already gone reports ErrCartNotFound.
func (t *pgTx) DeleteCart(ctx context.Context, ownerID, cartID string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1 AND user_id = $2`, cartID, ownerID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart rows affected: %w", err)
	}
	if n == 0 {
		return ErrCartNotFound
	}
	return nil
}
