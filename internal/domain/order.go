package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentStatusFulfilled   FulfillmentStatus = "fulfilled"
)

const OrderEventCreated = "order_created"

type Address struct {
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	PostalCode  string     `json:"postalCode,omitempty"`
	Country     string     `json:"country,omitempty"`
	DeliveryDay *time.Time `json:"deliveryDay,omitempty"`
}

type OrderItem struct {
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id"`
	ProductTitle string          `json:"product_title"`
	VariantTitle string          `json:"variant_title"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	ImageURL     *string         `json:"image_url,omitempty"`
}

type OrderEvent struct {
	Type      string
	Data      json.RawMessage
	CreatedAt time.Time
}

type Payment struct {
	ID        uuid.UUID
	Provider  string
	Method    PaymentMethod
	Amount    decimal.Decimal
	Currency  string
	Status    PaymentStatus
	CreatedAt time.Time
}

type Order struct {
	ID                uuid.UUID
	Number            string
	UserID            *string
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	FulfillmentStatus FulfillmentStatus

	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	Currency       string

	CustomerEmail  string
	CustomerPhone  string
	CustomerLocale string

	ShippingMethod  ShippingMethod
	ShippingAddress *Address
	IdempotencyKey  *string

	// RequestFingerprint identifies the request stored under IdempotencyKey.
	RequestFingerprint *string

	Items   []OrderItem
	Events  []OrderEvent
	Payment *Payment

	CreatedAt time.Time
	UpdatedAt time.Time
}
