package discount

import (
	"maps"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time, read-only copy of the discount configuration.
// One snapshot prices a whole checkout.
type Snapshot struct {
	global     decimal.Decimal
	categories map[string]decimal.Decimal
	brands     map[string]decimal.Decimal
}

// NewSnapshot copies cfg so later changes to its maps are not observed.
func NewSnapshot(cfg domain.DiscountConfiguration) Snapshot {
	return Snapshot{
		global:     cfg.Global,
		categories: maps.Clone(cfg.Categories),
		brands:     maps.Clone(cfg.Brands),
	}
}

func (s Snapshot) Global() decimal.Decimal {
	return s.global
}

func (s Snapshot) Category(id string) (decimal.Decimal, bool) {
	p, ok := s.categories[id]
	return p, ok
}

func (s Snapshot) Brand(id string) (decimal.Decimal, bool) {
	p, ok := s.brands[id]
	return p, ok
}
