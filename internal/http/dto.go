package http

import (
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/shopspring/decimal"
)

const dateOnly = "2006-01-02"

type GuestItemDTO struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type AddressDTO struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
	DeliveryDay string `json:"deliveryDay"`
}

type CheckoutRequestDTO struct {
	CartID          string         `json:"cartId"`
	Items           []GuestItemDTO `json:"items"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	ShippingMethod  string         `json:"shippingMethod"`
	ShippingAddress *AddressDTO    `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	Locale          string         `json:"locale"`
}

type OrderSummaryDTO struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
}

type PaymentStubDTO struct {
	Provider   string     `json:"provider"`
	PaymentURL *string    `json:"paymentUrl"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

type CheckoutResponseDTO struct {
	Order      OrderSummaryDTO `json:"order"`
	Payment    PaymentStubDTO  `json:"payment"`
	NextAction string          `json:"nextAction"`
}

type OrderItemDTO struct {
	ProductID    string          `json:"productId"`
	VariantID    string          `json:"variantId"`
	ProductTitle string          `json:"productTitle"`
	VariantTitle string          `json:"variantTitle"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	ImageURL     *string         `json:"imageUrl,omitempty"`
}

type OrderResponseDTO struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	Status            string          `json:"status"`
	PaymentStatus     string          `json:"paymentStatus"`
	FulfillmentStatus string          `json:"fulfillmentStatus"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	ShippingAmount    decimal.Decimal `json:"shippingAmount"`
	TaxAmount         decimal.Decimal `json:"taxAmount"`
	Total             decimal.Decimal `json:"total"`
	Currency          string          `json:"currency"`
	ShippingMethod    string          `json:"shippingMethod"`
	ShippingAddress   *AddressDTO     `json:"shippingAddress,omitempty"`
	PaymentMethod     string          `json:"paymentMethod,omitempty"`
	Items             []OrderItemDTO  `json:"items"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// toDomain builds the service request. A cartId selects the caller's stored
// cart; otherwise the items are checked out as a guest cart.
func (d *CheckoutRequestDTO) toDomain(userID, idempotencyKey string) (*domain.CheckoutRequest, error) {
	req := &domain.CheckoutRequest{
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		Email:          strings.TrimSpace(d.Email),
		Phone:          strings.TrimSpace(d.Phone),
		ShippingMethod: domain.ShippingMethod(d.ShippingMethod),
		PaymentMethod:  domain.PaymentMethod(d.PaymentMethod),
		Locale:         d.Locale,
	}

	cartID := strings.TrimSpace(d.CartID)
	switch {
	case cartID != "" && len(d.Items) > 0:
		return nil, &service.ValidationError{Field: "cartId", Reason: "cannot be combined with items"}
	case cartID != "":
		req.Source = domain.OwnedCart{OwnerID: userID, CartID: cartID}
	default:
		items := make([]domain.GuestItem, 0, len(d.Items))
		for _, it := range d.Items {
			items = append(items, domain.GuestItem{ProductID: it.ProductID, VariantID: it.VariantID, Quantity: it.Quantity})
		}
		req.Source = domain.GuestItems{Items: items}
	}

	if d.ShippingAddress != nil {
		addr, err := d.ShippingAddress.toDomain()
		if err != nil {
			return nil, err
		}
		req.ShippingAddress = addr
	}
	return req, nil
}

func (a *AddressDTO) toDomain() (*domain.Address, error) {
	addr := &domain.Address{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
	if day := strings.TrimSpace(a.DeliveryDay); day != "" {
		t, err := parseDeliveryDay(day)
		if err != nil {
			return nil, &service.ValidationError{Field: "shippingAddress.deliveryDay", Reason: "must be an RFC 3339 timestamp or a YYYY-MM-DD date"}
		}
		addr.DeliveryDay = &t
	}
	return addr, nil
}

// parseDeliveryDay accepts a full timestamp or a bare date, read as UTC midnight.
func parseDeliveryDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(dateOnly, s)
}

func checkoutResponseFromDomain(resp *domain.CheckoutResponse) CheckoutResponseDTO {
	return CheckoutResponseDTO{
		Order: OrderSummaryDTO{
			ID:            resp.Order.ID.String(),
			Number:        resp.Order.Number,
			Status:        string(resp.Order.Status),
			PaymentStatus: string(resp.Order.PaymentStatus),
			Total:         resp.Order.Total,
			Currency:      resp.Order.Currency,
		},
		Payment: PaymentStubDTO{
			Provider:   resp.Payment.Provider,
			PaymentURL: resp.Payment.PaymentURL,
			ExpiresAt:  resp.Payment.ExpiresAt,
		},
		NextAction: string(resp.NextAction),
	}
}

func orderFromDomain(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			ProductTitle: it.ProductTitle,
			VariantTitle: it.VariantTitle,
			SKU:          it.SKU,
			Quantity:     it.Quantity,
			Price:        it.Price,
			Total:        it.Total,
			ImageURL:     it.ImageURL,
		})
	}

	dto := OrderResponseDTO{
		ID:                o.ID.String(),
		Number:            o.Number,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		FulfillmentStatus: string(o.FulfillmentStatus),
		Subtotal:          o.Subtotal,
		DiscountAmount:    o.DiscountAmount,
		ShippingAmount:    o.ShippingAmount,
		TaxAmount:         o.TaxAmount,
		Total:             o.Total,
		Currency:          o.Currency,
		ShippingMethod:    string(o.ShippingMethod),
		Items:             items,
		CreatedAt:         o.CreatedAt,
	}
	if o.Payment != nil {
		dto.PaymentMethod = string(o.Payment.Method)
	}
	if a := o.ShippingAddress; a != nil {
		dto.ShippingAddress = &AddressDTO{
			FirstName:  a.FirstName,
			LastName:   a.LastName,
			Address:    a.Address,
			City:       a.City,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
		if a.DeliveryDay != nil {
			dto.ShippingAddress.DeliveryDay = a.DeliveryDay.UTC().Format(time.RFC3339)
		}
	}
	return dto
}
