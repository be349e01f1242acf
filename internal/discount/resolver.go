// Package discount implements the cascading discount policy: exactly one of
// the product, category, brand or global percentages applies to a line.
package discount

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

// Source names the rule that produced an effective percentage.
type Source string

const (
	SourceNone     Source = "none"
	SourceProduct  Source = "product"
	SourceCategory Source = "category"
	SourceBrand    Source = "brand"
	SourceGlobal   Source = "global"
)

// Target is what the resolver needs to know about a line.
type Target struct {
	ProductPercent    decimal.Decimal
	PrimaryCategoryID *string
	BrandID           *string
}

// Resolve returns the effective percentage for t, always in [0, 100).
func Resolve(t Target, snap Snapshot) decimal.Decimal {
	p, _ := ResolveWithSource(t, snap)
	return p
}

// ResolveWithSource is Resolve that also reports which rule matched.
// Precedence: product, primary category, brand, global. Percentages outside
// (0, 100) count as not configured.
func ResolveWithSource(t Target, snap Snapshot) (decimal.Decimal, Source) {
	if usable(t.ProductPercent) {
		return t.ProductPercent, SourceProduct
	}
	if t.PrimaryCategoryID != nil {
		if p, ok := snap.Category(*t.PrimaryCategoryID); ok && usable(p) {
			return p, SourceCategory
		}
	}
	if t.BrandID != nil {
		if p, ok := snap.Brand(*t.BrandID); ok && usable(p) {
			return p, SourceBrand
		}
	}
	if usable(snap.Global()) {
		return snap.Global(), SourceGlobal
	}
	return decimal.Zero, SourceNone
}

// Apply returns price reduced by percent, rounded to MoneyPlaces.
func Apply(price, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return price.Round(MoneyPlaces)
	}
	factor := hundred.Sub(percent).Div(hundred)
	return price.Mul(factor).Round(MoneyPlaces)
}

func usable(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(hundred)
}
