package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(number string) *domain.Order {
	userID := "user-1"
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:                uuid.New(),
		Number:            number,
		UserID:            &userID,
		Status:            domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		FulfillmentStatus: domain.FulfillmentStatusUnfulfilled,
		Subtotal:          decimal.NewFromInt(8000),
		Total:             decimal.NewFromInt(8000),
		Currency:          "AMD",
		ShippingMethod:    domain.ShippingMethodDelivery,
		ShippingAddress:   &domain.Address{Address: "1 Abovyan", City: "Yerevan", DeliveryDay: &day},
		Items: []domain.OrderItem{{
			ProductID:    "prod-tshirt",
			VariantID:    "var-tshirt-red-m",
			ProductTitle: "T-shirt",
			SKU:          "TSHIRT-RED-M",
			Quantity:     2,
			Price:        decimal.NewFromInt(4000),
			Total:        decimal.NewFromInt(8000),
		}},
		Payment:   &domain.Payment{Method: domain.PaymentMethodCard, Provider: "arca"},
		CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func serve(t *testing.T, svc service.CheckoutService, method, target, userID string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(RouterConfig{Service: svc})
	req := httptest.NewRequest(method, target, nil)
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListOrders_Success(t *testing.T) {
	mock := &MockCheckoutService{Orders: []*domain.Order{testOrder("260310-00001")}}

	rec := serve(t, mock, http.MethodGet, "/api/v1/orders?limit=5&offset=10", "user-1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", mock.LastUserID)
	assert.Equal(t, 5, mock.LastLimit)
	assert.Equal(t, 10, mock.LastOffset)

	var resp []OrderResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "260310-00001", resp[0].Number)
	assert.Equal(t, "card", resp[0].PaymentMethod)
	require.Len(t, resp[0].Items, 1)
	assert.Equal(t, "TSHIRT-RED-M", resp[0].Items[0].SKU)
	require.NotNil(t, resp[0].ShippingAddress)
	assert.Equal(t, "2026-03-12T00:00:00Z", resp[0].ShippingAddress.DeliveryDay)
}

func TestListOrders_EmptyList(t *testing.T) {
	mock := &MockCheckoutService{Orders: []*domain.Order{}}

	rec := serve(t, mock, http.MethodGet, "/api/v1/orders", "user-1")

	require.Equal(t, http.StatusOK, rec.Code)
	// Must be a JSON array, not null
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Zero(t, mock.LastLimit)
}

func TestListOrders_InvalidQuery(t *testing.T) {
	for _, target := range []string{"/api/v1/orders?limit=ten", "/api/v1/orders?offset=1.5"} {
		mock := &MockCheckoutService{}
		rec := serve(t, mock, http.MethodGet, target, "user-1")

		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Empty(t, mock.LastUserID)
	}
}

func TestListOrders_Anonymous(t *testing.T) {
	mock := &MockCheckoutService{Err: &service.ValidationError{Field: "userId", Reason: "authentication is required"}}

	rec := serve(t, mock, http.MethodGet, "/api/v1/orders", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeProblem(t, rec).Detail, "userId")
}

func TestGetOrder_Success(t *testing.T) {
	mock := &MockCheckoutService{Order: testOrder("260310-00007")}

	rec := serve(t, mock, http.MethodGet, "/api/v1/orders/260310-00007", "user-1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "260310-00007", mock.LastNumber)
	assert.Equal(t, "user-1", mock.LastUserID)

	var resp OrderResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "260310-00007", resp.Number)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(8000)))
}

func TestGetOrder_NotFound(t *testing.T) {
	mock := &MockCheckoutService{Err: &service.NotFoundError{Resource: "order", ID: "260310-00007"}}

	rec := serve(t, mock, http.MethodGet, "/api/v1/orders/260310-00007", "user-2")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "urn:storefront:problem:not-found", decodeProblem(t, rec).Type)
}
