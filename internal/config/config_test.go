package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "storefront-orders", cfg.OrdersTopic)
	assert.Equal(t, "storefront-settings", cfg.SettingsTopic)
	assert.Equal(t, "AMD", cfg.Currency)
	assert.Equal(t, 10*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBodySize)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("SETTINGS_CACHE_TTL", "5m")
	t.Setenv("CHECKOUT_TIMEOUT", "3s")
	t.Setenv("MAX_REQUEST_BODY_BYTES", "2048")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.SettingsCacheTTL)
	assert.Equal(t, 3*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, int64(2048), cfg.MaxRequestBodySize)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value, wantErr string
	}{
		{name: "port", key: "DB_PORT", value: "abc", wantErr: "invalid DB_PORT"},
		{name: "duration", key: "CHECKOUT_TIMEOUT", value: "soon", wantErr: "invalid CHECKOUT_TIMEOUT"},
		{name: "negative duration", key: "REQUEST_TIMEOUT", value: "-1s", wantErr: "invalid REQUEST_TIMEOUT"},
		{name: "backend", key: "STORE_BACKEND", value: "mongo", wantErr: "invalid STORE_BACKEND"},
		{name: "body size", key: "MAX_REQUEST_BODY_BYTES", value: "0", wantErr: "invalid MAX_REQUEST_BODY_BYTES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
