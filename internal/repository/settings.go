package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/lib/pq"
)

// GetDiscountConfiguration reads the three discount settings in one query so
// the result is a consistent snapshot. Missing keys are treated as unset.
func (r *Repository) GetDiscountConfiguration(ctx context.Context) (domain.DiscountConfiguration, error) {
	keys := []string{domain.SettingGlobalDiscount, domain.SettingCategoryDiscounts, domain.SettingBrandDiscounts}

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return domain.DiscountConfiguration{}, fmt.Errorf("query discount settings: %w", err)
	}
	defer rows.Close()

	raw := make(map[string][]byte, len(keys))
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return domain.DiscountConfiguration{}, fmt.Errorf("scan discount setting: %w", err)
		}
		raw[key] = value
	}
	if err := rows.Err(); err != nil {
		return domain.DiscountConfiguration{}, fmt.Errorf("iterate discount settings: %w", err)
	}

	return ParseDiscountConfiguration(raw)
}

// ParseDiscountConfiguration decodes raw settings values keyed by setting name.
func ParseDiscountConfiguration(raw map[string][]byte) (domain.DiscountConfiguration, error) {
	var cfg domain.DiscountConfiguration
	if v, ok := raw[domain.SettingGlobalDiscount]; ok && len(v) > 0 && string(v) != "null" {
		if err := json.Unmarshal(v, &cfg.Global); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", domain.SettingGlobalDiscount, err)
		}
	}
	if v, ok := raw[domain.SettingCategoryDiscounts]; ok && len(v) > 0 {
		if err := json.Unmarshal(v, &cfg.Categories); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", domain.SettingCategoryDiscounts, err)
		}
	}
	if v, ok := raw[domain.SettingBrandDiscounts]; ok && len(v) > 0 {
		if err := json.Unmarshal(v, &cfg.Brands); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", domain.SettingBrandDiscounts, err)
		}
	}
	return cfg, nil
}
