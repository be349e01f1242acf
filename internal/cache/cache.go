package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

type SettingsCache interface {
	Get(ctx context.Context) (*domain.DiscountConfiguration, error)
	Set(ctx context.Context, cfg *domain.DiscountConfiguration) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
