package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

const DefaultSettingsTopic = "storefront-settings"

// SettingsChangedEvent is published by whatever edits the settings table.
type SettingsChangedEvent struct {
	Key string `json:"key"`
}

// MessageReader is the subset of *kafka.Reader used by the consumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Invalidator drops a cached discount configuration.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// SettingsConsumer invalidates the discount configuration cache when a
// discount setting changes.
type SettingsConsumer struct {
	reader      MessageReader
	invalidator Invalidator
	logger      *slog.Logger
	retryDelay  time.Duration
}

func NewSettingsConsumer(invalidator Invalidator, logger *slog.Logger, topic, groupID string, brokers ...string) *SettingsConsumer {
	if topic == "" {
		topic = DefaultSettingsTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newSettingsConsumer(reader, invalidator, logger)
}

func newSettingsConsumer(reader MessageReader, invalidator Invalidator, logger *slog.Logger) *SettingsConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsConsumer{reader: reader, invalidator: invalidator, logger: logger, retryDelay: time.Second}
}

func (c *SettingsConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *SettingsConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("error closing kafka reader", "error", err)
	}
}

// processMessage reports whether the cache was invalidated.
func (c *SettingsConsumer) processMessage(ctx context.Context) bool {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		c.logger.ErrorContext(ctx, "error reading settings message", "error", err)
		c.backoff(ctx)
		return false
	}

	var event SettingsChangedEvent
	if len(m.Value) > 0 {
		if err := json.Unmarshal(m.Value, &event); err != nil {
			// an unreadable change notice still means something changed
			c.logger.WarnContext(ctx, "error parsing settings message", "error", err, "offset", m.Offset)
		}
	}
	if event.Key != "" && !isDiscountSetting(event.Key) {
		c.logger.DebugContext(ctx, "ignoring settings change", "key", event.Key)
		return false
	}

	if err := c.invalidator.Invalidate(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to invalidate discount settings cache", "error", err)
		return false
	}
	c.logger.InfoContext(ctx, "discount settings cache invalidated", "key", event.Key)
	return true
}

func (c *SettingsConsumer) backoff(ctx context.Context) {
	t := time.NewTimer(c.retryDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func isDiscountSetting(key string) bool {
	key = strings.TrimSpace(key)
	return key == domain.SettingGlobalDiscount ||
		key == domain.SettingCategoryDiscounts ||
		key == domain.SettingBrandDiscounts
}
