package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrProductNotFound         = errors.New("product not found")
	ErrVariantNotFound         = errors.New("variant not found")
	ErrCartNotFound            = errors.New("cart not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrDuplicateOrderNumber    = errors.New("order number already exists")
	ErrDuplicateIdempotencyKey = errors.New("order for this idempotency key already exists")
)

// StockError reports a conditional decrement that did not apply.
type StockError struct {
	VariantID string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: available %d, requested %d", e.VariantID, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OutboxEvent struct {
	ID          int
	AggregateId string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

type CatalogReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetVariant(ctx context.Context, id string) (*domain.ProductVariant, error)
}

type CartReader interface {
	GetCart(ctx context.Context, ownerID, cartID string) (*domain.Cart, error)
}

type SettingsReader interface {
	GetDiscountConfiguration(ctx context.Context) (domain.DiscountConfiguration, error)
}

type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
}

// Tx is the set of writes allowed inside a checkout unit of work.
type Tx interface {
	CurrentStock(ctx context.Context, variantID string) (int, error)
	// Reserve decrements stock only if stock >= quantity and returns the new
	// stock. It fails with a *StockError otherwise.
	Reserve(ctx context.Context, variantID string, quantity int) (int, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
	DeleteCart(ctx context.Context, ownerID, cartID string) error
	EnqueueEvent(ctx context.Context, event *OutboxEvent) error
}

type UnitOfWork interface {
	// RunInTx commits when fn returns nil and rolls every write back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int) error
}

type RepoInterface interface {
	CatalogReader
	CartReader
	SettingsReader
	OrderReader
	UnitOfWork
	OutboxRepository
	Ping(ctx context.Context) error
	Close() error
}
