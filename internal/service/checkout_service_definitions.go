package service

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCurrency = "AMD"
	defaultLocale   = "en"
	defaultTimeout  = 10 * time.Second
)

type CheckoutService interface {
	Checkout(ctx context.Context, request *domain.CheckoutRequest) (*domain.CheckoutResponse, error)
	GetOrder(ctx context.Context, userID, number string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
}

// Store is everything the checkout needs from persistence.
type Store interface {
	repository.CatalogReader
	repository.CartReader
	repository.SettingsReader
	repository.OrderReader
	repository.UnitOfWork
}

type MetricsRecorder interface {
	ObserveCheckout(result string, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveCheckout(string, time.Duration) {}

type CheckoutServiceImpl struct {
	repo     Store
	settings repository.SettingsReader
	metrics  MetricsRecorder
	logger   *slog.Logger
	tracer   trace.Tracer

	now          func() time.Time
	numberSuffix func() int

	currency      string
	defaultLocale string
	timeout       time.Duration
}

type Option func(*CheckoutServiceImpl)

// WithSettingsReader reads the discount configuration from r instead of the store.
func WithSettingsReader(r repository.SettingsReader) Option {
	return func(s *CheckoutServiceImpl) { s.settings = r }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *CheckoutServiceImpl) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *CheckoutServiceImpl) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *CheckoutServiceImpl) { s.now = now }
}

// WithOrderNumberSource sets the generator of the numeric order number suffix.
func WithOrderNumberSource(next func() int) Option {
	return func(s *CheckoutServiceImpl) { s.numberSuffix = next }
}

func WithCurrency(currency string) Option {
	return func(s *CheckoutServiceImpl) { s.currency = currency }
}

func WithDefaultLocale(locale string) Option {
	return func(s *CheckoutServiceImpl) { s.defaultLocale = locale }
}

// WithTimeout bounds a whole checkout, including the unit of work.
func WithTimeout(d time.Duration) Option {
	return func(s *CheckoutServiceImpl) { s.timeout = d }
}

func NewCheckoutService(repo Store, opts ...Option) *CheckoutServiceImpl {
	s := &CheckoutServiceImpl{
		repo:          repo,
		settings:      repo,
		metrics:       noopRecorder{},
		logger:        slog.Default(),
		tracer:        otel.Tracer("github.com/fjod/go_storefront/internal/service"),
		now:           time.Now,
		numberSuffix:  func() int { return rand.Intn(orderNumberSpace) },
		currency:      defaultCurrency,
		defaultLocale: defaultLocale,
		timeout:       defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
