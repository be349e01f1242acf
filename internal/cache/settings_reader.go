package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"golang.org/x/sync/singleflight"
)

// CachedSettingsReader is a read-through cache of the discount configuration.
// Cache failures never fail a read; the source is used instead.
type CachedSettingsReader struct {
	source  repository.SettingsReader
	cache   SettingsCache
	breaker *circuitbreaker.Breaker[*domain.DiscountConfiguration]
	sfg     singleflight.Group // Prevents cache stampede
	logger  *slog.Logger

	// generation is bumped by every Invalidate; a read that saw an older
	// generation does not leave its value in the cache.
	generation atomic.Uint64
}

// sharedReadTimeout bounds a collapsed read, which no single caller owns.
const sharedReadTimeout = 5 * time.Second

var _ repository.SettingsReader = (*CachedSettingsReader)(nil)

func NewCachedSettingsReader(source repository.SettingsReader, cache SettingsCache, logger *slog.Logger) *CachedSettingsReader {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := circuitbreaker.DefaultConfig("settings-cache")
	cfg.OnStateChange = func(name, from, to string) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	}
	return &CachedSettingsReader{
		source:  source,
		cache:   cache,
		breaker: circuitbreaker.New[*domain.DiscountConfiguration](cfg),
		logger:  logger,
	}
}

// GetDiscountConfiguration returns the cached configuration, reading through to
// the source on a miss. Concurrent misses share one read; each caller still
// gives up when its own context is done.
func (c *CachedSettingsReader) GetDiscountConfiguration(ctx context.Context) (domain.DiscountConfiguration, error) {
	ch := c.sfg.DoChan(discountSettingsKey, func() (interface{}, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		return c.load(readCtx)
	})

	select {
	case <-ctx.Done():
		return domain.DiscountConfiguration{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.DiscountConfiguration{}, res.Err
		}
		return res.Val.(domain.DiscountConfiguration), nil
	}
}

func (c *CachedSettingsReader) load(ctx context.Context) (domain.DiscountConfiguration, error) {
	gen := c.generation.Load()

	cached, err := c.breaker.Execute(func() (*domain.DiscountConfiguration, error) {
		cfg, err := c.cache.Get(ctx)
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return cfg, err
	})
	if err == nil && cached != nil {
		return *cached, nil
	}
	if err != nil && !circuitbreaker.IsOpen(err) {
		c.logger.WarnContext(ctx, "settings cache get error", "error", err)
	}

	cfg, err := c.source.GetDiscountConfiguration(ctx)
	if err != nil {
		return domain.DiscountConfiguration{}, err
	}

	if c.generation.Load() != gen {
		c.logger.DebugContext(ctx, "settings invalidated during read, not caching")
		return cfg, nil
	}
	_, errSet := c.breaker.Execute(func() (*domain.DiscountConfiguration, error) {
		return nil, c.cache.Set(ctx, &cfg)
	})
	if errSet != nil && !circuitbreaker.IsOpen(errSet) {
		c.logger.WarnContext(ctx, "settings cache set error", "error", errSet)
	}
	// an Invalidate between the check and the Set may have deleted first
	if errSet == nil && c.generation.Load() != gen {
		if err := c.cache.Delete(ctx); err != nil {
			c.logger.WarnContext(ctx, "settings cache delete error", "error", err)
		}
	}
	return cfg, nil
}

// Invalidate drops the cached configuration so the next read goes to the
// source. Reads already in flight neither repopulate the cache nor serve
// later callers.
func (c *CachedSettingsReader) Invalidate(ctx context.Context) error {
	c.generation.Add(1)
	c.sfg.Forget(discountSettingsKey)
	return c.cache.Delete(ctx)
}
