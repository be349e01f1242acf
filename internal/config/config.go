package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	HTTPPort string
	GRPCPort string

	StoreBackend   string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	RedisAddr        string
	RedisPassword    string
	SettingsCacheTTL time.Duration

	KafkaBrokers       []string
	OrdersTopic        string
	SettingsTopic      string
	OutboxPollInterval time.Duration

	Currency        string
	DefaultLocale   string
	CheckoutTimeout time.Duration

	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	LogLevel           string
}

// Load reads the configuration from the environment. Malformed numbers and
// durations are reported instead of silently replaced by defaults.
func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "50060"),

		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         p.int("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "storefront"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		SettingsCacheTTL: p.duration("SETTINGS_CACHE_TTL", time.Minute),

		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		OrdersTopic:        getEnv("ORDERS_TOPIC", "storefront-orders"),
		SettingsTopic:      getEnv("SETTINGS_TOPIC", "storefront-settings"),
		OutboxPollInterval: p.duration("OUTBOX_POLL_INTERVAL", time.Second),

		Currency:        getEnv("CURRENCY", "AMD"),
		DefaultLocale:   getEnv("DEFAULT_LOCALE", "en"),
		CheckoutTimeout: p.duration("CHECKOUT_TIMEOUT", 10*time.Second),

		RequestTimeout:     p.duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: int64(p.int("MAX_REQUEST_BODY_BYTES", 1<<20)), // 1MB
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
	if p.err != nil {
		return nil, p.err
	}

	switch cfg.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", cfg.StoreBackend, BackendPostgres, BackendMemory)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("invalid MAX_REQUEST_BODY_BYTES: must be positive")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser keeps the first conversion error.
type parser struct {
	err error
}

func (p *parser) int(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err == nil && v <= 0 {
		err = fmt.Errorf("must be positive")
	}
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
