package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const discountSettingsKey = "settings:discounts"

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = time.Minute
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context) (*domain.DiscountConfiguration, error) {
	data, err := r.client.Get(ctx, discountSettingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cfg domain.DiscountConfiguration
	if err2 := json.Unmarshal(data, &cfg); err2 != nil {
		return nil, fmt.Errorf("unmarshal discount settings failed: %w", err2)
	}
	return &cfg, nil
}

func (r *RedisCache) Set(ctx context.Context, cfg *domain.DiscountConfiguration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal discount settings failed: %w", err)
	}

	if err := r.client.Set(ctx, discountSettingsKey, data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, discountSettingsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// ttl spreads expirations over an extra quarter of the base TTL.
func (r *RedisCache) ttl() time.Duration {
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/4) + 1))
	return r.baseTTL + jitter
}
