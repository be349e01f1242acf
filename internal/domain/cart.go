package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ProductID string
	VariantID string
	Quantity  int
	Price     decimal.Decimal // captured when the item was added, before discounts
	AddedAt   time.Time
}

// CartSource says where the lines of a checkout come from.
// It is either an OwnedCart or GuestItems.
type CartSource interface {
	cartSource()
}

// OwnedCart is a persisted cart of an authenticated account.
type OwnedCart struct {
	OwnerID string
	CartID  string
}

// GuestItems is a cart carried by the caller as explicit line items.
type GuestItems struct {
	Items []GuestItem
}

type GuestItem struct {
	ProductID string
	VariantID string
	Quantity  int
}

func (OwnedCart) cartSource()  {}
func (GuestItems) cartSource() {}

// ResolvedLine is a cart line enriched with current catalog data.
type ResolvedLine struct {
	ProductID         string
	ProductTitle      string
	ProductDiscount   decimal.Decimal
	PrimaryCategoryID *string
	BrandID           *string

	VariantID    string
	VariantTitle string
	SKU          string
	ImageURL     *string
	UnitPrice    decimal.Decimal
	Stock        int

	Quantity int
}

// PricedLine is a resolved line after discount pricing.
type PricedLine struct {
	ResolvedLine
	OriginalPrice   decimal.Decimal
	DiscountPercent decimal.Decimal
	Price           decimal.Decimal // unit price after discount
	Total           decimal.Decimal
}
