package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

const (
	constraintOrderNumber    = "orders_number_unique"
	constraintIdempotencyKey = "orders_idempotency_key_unique"
)

const orderColumns = `id, number, user_id, status, payment_status, fulfillment_status,
	subtotal, discount_amount, shipping_amount, tax_amount, total, currency,
	customer_email, customer_phone, customer_locale, shipping_method, shipping_address,
	idempotency_key, request_fingerprint, created_at, updated_at`

// CreateOrder writes the order with its items, events and payment.
func (t *pgTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	var address any
	if order.ShippingAddress != nil {
		b, err := json.Marshal(order.ShippingAddress)
		if err != nil {
			return fmt.Errorf("failed to marshal shipping address: %w", err)
		}
		address = string(b)
	}

	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err := t.tx.ExecContext(ctx, query,
		order.ID,
		order.Number,
		order.UserID,
		order.Status,
		order.PaymentStatus,
		order.FulfillmentStatus,
		order.Subtotal,
		order.DiscountAmount,
		order.ShippingAmount,
		order.TaxAmount,
		order.Total,
		order.Currency,
		order.CustomerEmail,
		order.CustomerPhone,
		order.CustomerLocale,
		order.ShippingMethod,
		address,
		order.IdempotencyKey,
		order.RequestFingerprint,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, constraintOrderNumber):
			return ErrDuplicateOrderNumber
		case isUniqueViolation(err, constraintIdempotencyKey):
			return ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, position, product_id, variant_id, product_title, variant_title, sku, quantity, price, total, image_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			order.ID, i, item.ProductID, item.VariantID, item.ProductTitle, item.VariantTitle,
			item.SKU, item.Quantity, item.Price, item.Total, item.ImageURL,
		)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", item.VariantID, err)
		}
	}

	for _, event := range order.Events {
		data := "{}"
		if len(event.Data) > 0 {
			data = string(event.Data)
		}
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO order_events (order_id, type, data, created_at) VALUES ($1, $2, $3, $4)`,
			order.ID, event.Type, data, event.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order event: %w", err)
		}
	}

	if p := order.Payment; p != nil {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO payments (id, order_id, provider, method, amount, currency, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, order.ID, p.Provider, p.Method, p.Amount, p.Currency, p.Status, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
	}

	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *Repository) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
}

func (r *Repository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1
	          ORDER BY created_at DESC, number DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	rows.Close()

	for _, order := range orders {
		if err := r.loadOrderDetails(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) getOrder(ctx context.Context, query string, arg any) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadOrderDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var addressJSON []byte
	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.UserID,
		&order.Status,
		&order.PaymentStatus,
		&order.FulfillmentStatus,
		&order.Subtotal,
		&order.DiscountAmount,
		&order.ShippingAmount,
		&order.TaxAmount,
		&order.Total,
		&order.Currency,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.CustomerLocale,
		&order.ShippingMethod,
		&addressJSON,
		&order.IdempotencyKey,
		&order.RequestFingerprint,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if len(addressJSON) > 0 {
		var addr domain.Address
		if err := json.Unmarshal(addressJSON, &addr); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
		order.ShippingAddress = &addr
	}
	return &order, nil
}

func (r *Repository) loadOrderDetails(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, variant_id, product_title, variant_title, sku, quantity, price, total, image_url
		 FROM order_items WHERE order_id = $1 ORDER BY position`, order.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.VariantID, &item.ProductTitle, &item.VariantTitle,
			&item.SKU, &item.Quantity, &item.Price, &item.Total, &item.ImageURL); err != nil {
			rows.Close()
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}

	evRows, err := r.db.QueryContext(ctx,
		`SELECT type, data, created_at FROM order_events WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return fmt.Errorf("query order events: %w", err)
	}
	for evRows.Next() {
		var ev domain.OrderEvent
		var data []byte
		if err := evRows.Scan(&ev.Type, &data, &ev.CreatedAt); err != nil {
			evRows.Close()
			return fmt.Errorf("scan order event: %w", err)
		}
		ev.Data = json.RawMessage(data)
		order.Events = append(order.Events, ev)
	}
	evRows.Close()
	if err := evRows.Err(); err != nil {
		return fmt.Errorf("iterate order events: %w", err)
	}

	var p domain.Payment
	err = r.db.QueryRowContext(ctx,
		`SELECT id, provider, method, amount, currency, status, created_at FROM payments WHERE order_id = $1`,
		order.ID,
	).Scan(&p.ID, &p.Provider, &p.Method, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("query payment: %w", err)
	default:
		order.Payment = &p
	}
	return nil
}
