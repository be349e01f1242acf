package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	UserID         string // empty for anonymous callers
	IdempotencyKey string

	Source          CartSource
	Email           string
	Phone           string
	ShippingMethod  ShippingMethod
	ShippingAddress *Address
	PaymentMethod   PaymentMethod
	Locale          string
}

type OrderSummary struct {
	ID            uuid.UUID
	Number        string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Total         decimal.Decimal
	Currency      string
}

type PaymentStub struct {
	Provider   string
	PaymentURL *string
	ExpiresAt  *time.Time
}

type CheckoutResponse struct {
	Order      OrderSummary
	Payment    PaymentStub
	NextAction NextAction
	Replayed   bool
}
