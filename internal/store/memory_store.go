package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/google/uuid"
)

// MemoryStore implements repository.RepoInterface with in-memory storage.
// A unit of work holds the write lock for its whole duration.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	variants map[string]*domain.ProductVariant
	carts    map[string]*domain.Cart // cartID -> cart
	settings domain.DiscountConfiguration

	orders         map[uuid.UUID]*domain.Order
	ordersByNumber map[string]uuid.UUID
	ordersByKey    map[string]uuid.UUID
	outbox         []*repository.OutboxEvent
	processed      map[int]bool
	nextOutboxID   int
}

var _ repository.RepoInterface = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:       make(map[string]*domain.Product),
		variants:       make(map[string]*domain.ProductVariant),
		carts:          make(map[string]*domain.Cart),
		orders:         make(map[uuid.UUID]*domain.Order),
		ordersByNumber: make(map[string]uuid.UUID),
		ordersByKey:    make(map[string]uuid.UUID),
		processed:      make(map[int]bool),
	}
}

func (s *MemoryStore) PutProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Translations = slices.Clone(p.Translations)
	s.products[p.ID] = &p
}

func (s *MemoryStore) PutVariant(v domain.ProductVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.Options = slices.Clone(v.Options)
	s.variants[v.ID] = &v
}

func (s *MemoryStore) PutCart(c domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Items = slices.Clone(c.Items)
	s.carts[c.ID] = &c
}

func (s *MemoryStore) SetDiscountConfiguration(cfg domain.DiscountConfiguration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = domain.DiscountConfiguration{
		Global:     cfg.Global,
		Categories: maps.Clone(cfg.Categories),
		Brands:     maps.Clone(cfg.Brands),
	}
}

// SetStock sets the stock level for a variant
func (s *MemoryStore) SetStock(variantID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[variantID]
	if !ok {
		return repository.ErrVariantNotFound
	}
	v.Stock = stock
	return nil
}

// Stock returns the current stock of a variant, or -1 if it does not exist.
func (s *MemoryStore) Stock(variantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.variants[variantID]
	if !ok {
		return -1
	}
	return v.Stock
}

func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	cp.Translations = slices.Clone(p.Translations)
	return &cp, nil
}

func (s *MemoryStore) GetVariant(ctx context.Context, id string) (*domain.ProductVariant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.variants[id]
	if !ok {
		return nil, repository.ErrVariantNotFound
	}
	cp := *v
	cp.Options = slices.Clone(v.Options)
	return &cp, nil
}

func (s *MemoryStore) GetCart(ctx context.Context, ownerID, cartID string) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[cartID]
	if !ok || c.UserID != ownerID {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	cp.Items = slices.Clone(c.Items)
	return &cp, nil
}

func (s *MemoryStore) GetDiscountConfiguration(ctx context.Context) (domain.DiscountConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return domain.DiscountConfiguration{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.DiscountConfiguration{
		Global:     s.settings.Global,
		Categories: maps.Clone(s.settings.Categories),
		Brands:     maps.Clone(s.settings.Brands),
	}, nil
}

func (s *MemoryStore) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ordersByNumber[number]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return cloneOrder(s.orders[id]), nil
}

func (s *MemoryStore) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ordersByKey[key]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return cloneOrder(s.orders[id]), nil
}

func (s *MemoryStore) ListOrdersByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []*domain.Order
	for _, o := range s.orders {
		if o.UserID != nil && *o.UserID == userID {
			owned = append(owned, o)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].Number > owned[j].Number
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}

	result := make([]*domain.Order, 0, len(owned))
	for _, o := range owned {
		result = append(result, cloneOrder(o))
	}
	return result, nil
}

func (s *MemoryStore) GetUnprocessedEvents(ctx context.Context, limit int) ([]*repository.OutboxEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*repository.OutboxEvent
	for _, e := range s.outbox {
		if s.processed[e.ID] {
			continue
		}
		cp := *e
		events = append(events, &cp)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (s *MemoryStore) MarkEventAsProcessed(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[id] = true
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = slices.Clone(o.Items)
	cp.Events = slices.Clone(o.Events)
	if o.Payment != nil {
		p := *o.Payment
		cp.Payment = &p
	}
	if o.ShippingAddress != nil {
		a := *o.ShippingAddress
		cp.ShippingAddress = &a
	}
	return &cp
}
