package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderCreatedData struct {
	Number        string               `json:"number"`
	Source        string               `json:"source"`
	Total         decimal.Decimal      `json:"total"`
	Currency      string               `json:"currency"`
	ItemCount     int                  `json:"item_count"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

type orderCreatedPayload struct {
	OrderID        uuid.UUID          `json:"order_id"`
	Number         string             `json:"number"`
	UserID         *string            `json:"user_id,omitempty"`
	Total          decimal.Decimal    `json:"total"`
	Currency       string             `json:"currency"`
	PaymentMethod  string             `json:"payment_method"`
	ShippingMethod string             `json:"shipping_method"`
	Items          []domain.OrderItem `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
}

type assembleInput struct {
	request *domain.CheckoutRequest
	lines   []domain.PricedLine
	totals  orderTotals
	number  string
	locale  string
	now     time.Time
}

// assembleOrder builds the order aggregate with its items, the creation event
// and a pending payment.
func (s *CheckoutServiceImpl) assembleOrder(in assembleInput) (*domain.Order, error) {
	req := in.request
	now := in.now.UTC()

	items := make([]domain.OrderItem, 0, len(in.lines))
	for _, line := range in.lines {
		items = append(items, domain.OrderItem{
			ProductID:    line.ProductID,
			VariantID:    line.VariantID,
			ProductTitle: line.ProductTitle,
			VariantTitle: line.VariantTitle,
			SKU:          line.SKU,
			Quantity:     line.Quantity,
			Price:        line.Price,
			Total:        line.Total,
			ImageURL:     line.ImageURL,
		})
	}

	order := &domain.Order{
		ID:                uuid.New(),
		Number:            in.number,
		Status:            domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		FulfillmentStatus: domain.FulfillmentStatusUnfulfilled,
		Subtotal:          in.totals.Subtotal,
		DiscountAmount:    in.totals.DiscountAmount,
		ShippingAmount:    in.totals.ShippingAmount,
		TaxAmount:         in.totals.TaxAmount,
		Total:             in.totals.Total,
		Currency:          s.currency,
		CustomerEmail:     strings.TrimSpace(req.Email),
		CustomerPhone:     strings.TrimSpace(req.Phone),
		CustomerLocale:    in.locale,
		ShippingMethod:    req.ShippingMethod,
		Items:             items,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.UserID != "" {
		userID := req.UserID
		order.UserID = &userID
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		order.IdempotencyKey = &key
		fingerprint := requestFingerprint(req)
		order.RequestFingerprint = &fingerprint
	}
	if req.ShippingMethod == domain.ShippingMethodDelivery && req.ShippingAddress != nil {
		addr := *req.ShippingAddress
		order.ShippingAddress = &addr
	}

	data, err := json.Marshal(orderCreatedData{
		Number:        order.Number,
		Source:        sourceName(req.Source),
		Total:         order.Total,
		Currency:      order.Currency,
		ItemCount:     len(items),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}
	order.Events = []domain.OrderEvent{{Type: domain.OrderEventCreated, Data: data, CreatedAt: now}}

	order.Payment = &domain.Payment{
		ID:        uuid.New(),
		Provider:  req.PaymentMethod.Provider(),
		Method:    req.PaymentMethod,
		Amount:    order.Total,
		Currency:  order.Currency,
		Status:    domain.PaymentStatusPending,
		CreatedAt: now,
	}
	return order, nil
}

func orderCreatedEvent(order *domain.Order) (*repository.OutboxEvent, error) {
	payload := orderCreatedPayload{
		OrderID:        order.ID,
		Number:         order.Number,
		UserID:         order.UserID,
		Total:          order.Total,
		Currency:       order.Currency,
		ShippingMethod: string(order.ShippingMethod),
		Items:          order.Items,
		CreatedAt:      order.CreatedAt,
	}
	if order.Payment != nil {
		payload.PaymentMethod = string(order.Payment.Method)
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order created payload: %w", err)
	}
	return &repository.OutboxEvent{
		AggregateId: order.ID.String(),
		EventType:   domain.OrderEventCreated,
		Payload:     payloadJSON,
	}, nil
}

func sourceName(src domain.CartSource) string {
	switch src.(type) {
	case domain.OwnedCart, *domain.OwnedCart:
		return "cart"
	default:
		return "guest"
	}
}

// summarize builds the checkout response for a stored or freshly created order.
func summarize(order *domain.Order) *domain.CheckoutResponse {
	resp := &domain.CheckoutResponse{
		Order: domain.OrderSummary{
			ID:            order.ID,
			Number:        order.Number,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
			Total:         order.Total,
			Currency:      order.Currency,
		},
		NextAction: domain.NextActionViewOrder,
	}
	if order.Payment != nil {
		resp.Payment = domain.PaymentStub{Provider: order.Payment.Provider}
		if order.Payment.Method.IsOnline() {
			resp.NextAction = domain.NextActionRedirectToPayment
		}
	}
	return resp
}
