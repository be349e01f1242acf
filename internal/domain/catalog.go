package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Translation struct {
	Locale      string
	Title       string
	Description string
}

type Product struct {
	ID                string
	Translations      []Translation
	DiscountPercent   decimal.Decimal
	PrimaryCategoryID *string
	BrandID           *string
	CreatedAt         time.Time
}

// Title returns the translated title for locale, then for fallback, then the
// first translation that has a title.
func (p *Product) Title(locale, fallback string) string {
	for _, want := range []string{locale, fallback} {
		if want == "" {
			continue
		}
		for _, t := range p.Translations {
			if strings.EqualFold(t.Locale, want) && t.Title != "" {
				return t.Title
			}
		}
	}
	for _, t := range p.Translations {
		if t.Title != "" {
			return t.Title
		}
	}
	return ""
}

type VariantOption struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ProductVariant struct {
	ID        string
	ProductID string
	SKU       string
	Price     decimal.Decimal
	Stock     int
	Options   []VariantOption
	ImageURL  *string
}

// Title renders the variant options as "Key: Value / Key: Value".
// Variants without options are titled by their SKU.
func (v *ProductVariant) Title() string {
	if len(v.Options) == 0 {
		return v.SKU
	}
	parts := make([]string, 0, len(v.Options))
	for _, o := range v.Options {
		if o.Key == "" {
			parts = append(parts, o.Value)
			continue
		}
		parts = append(parts, o.Key+": "+o.Value)
	}
	return strings.Join(parts, " / ")
}
