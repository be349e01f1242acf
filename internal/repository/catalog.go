package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT id, discount_percent, primary_category_id, brand_id, created_at
	          FROM products WHERE id = $1`

	var p domain.Product
	var categoryID, brandID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.DiscountPercent,
		&categoryID,
		&brandID,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	p.PrimaryCategoryID = nullableString(categoryID)
	p.BrandID = nullableString(brandID)

	rows, err := r.db.QueryContext(ctx,
		`SELECT locale, title, description FROM product_translations WHERE product_id = $1 ORDER BY locale`, id)
	if err != nil {
		return nil, fmt.Errorf("query product translations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Translation
		if err := rows.Scan(&t.Locale, &t.Title, &t.Description); err != nil {
			return nil, fmt.Errorf("scan product translation: %w", err)
		}
		p.Translations = append(p.Translations, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product translations: %w", err)
	}

	return &p, nil
}

func (r *Repository) GetVariant(ctx context.Context, id string) (*domain.ProductVariant, error) {
	query := `SELECT id, product_id, sku, price, stock, options, image_url
	          FROM product_variants WHERE id = $1`

	var v domain.ProductVariant
	var optionsJSON []byte
	var imageURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.ProductID,
		&v.SKU,
		&v.Price,
		&v.Stock,
		&optionsJSON,
		&imageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query variant: %w", err)
	}

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &v.Options); err != nil {
			return nil, fmt.Errorf("unmarshal variant options: %w", err)
		}
	}
	v.ImageURL = nullableString(imageURL)

	return &v, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
