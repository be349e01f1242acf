package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fjod/go_storefront/internal/metrics"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoCheckout = `{"cartId":"cart-demo","email":"demo@example.am","phone":"+37499000000",
	"shippingMethod":"pickup","paymentMethod":"cash_on_delivery"}`

func newDemoServer(t *testing.T) (*store.MemoryStore, *metrics.ServerMetrics, http.Handler) {
	t.Helper()
	s := store.NewMemoryStore()
	store.SeedDemo(s)
	m := metrics.NewServerMetrics(nil)
	svc := service.NewCheckoutService(s, service.WithMetrics(m))
	router := NewRouter(RouterConfig{
		Service:        svc,
		Observer:       m,
		MetricsHandler: m.Handler(),
		Ping:           s.Ping,
	})
	return s, m, router
}

func do(router http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_CheckoutThenQuery(t *testing.T) {
	s, m, router := newDemoServer(t)
	headers := map[string]string{UserIDHeader: "user-demo", IdempotencyKeyHeader: "demo-key"}

	rec := do(router, http.MethodPost, "/api/v1/checkout", demoCheckout, headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created CheckoutResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	// 2 x 5000 at the 20% category discount plus 2500 at the 10% product discount
	assert.True(t, created.Order.Total.Equal(decimal.NewFromInt(10250)), created.Order.Total.String())
	assert.Equal(t, "view_order", created.NextAction)
	assert.Equal(t, 23, s.Stock("var-tshirt-red-m"))
	assert.Equal(t, 2, s.Stock("var-mug"))

	rec = do(router, http.MethodPost, "/api/v1/checkout", demoCheckout, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(ReplayedHeader))
	assert.Equal(t, 23, s.Stock("var-tshirt-red-m"))

	rec = do(router, http.MethodGet, "/api/v1/orders/"+created.Order.Number, "", map[string]string{UserIDHeader: "user-demo"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/orders/"+created.Order.Number, "", map[string]string{UserIDHeader: "someone-else"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/orders", "", map[string]string{UserIDHeader: "user-demo"})
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []OrderResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)

	// the cart was consumed by the first checkout
	rec = do(router, http.MethodPost, "/api/v1/checkout", demoCheckout, map[string]string{UserIDHeader: "user-demo"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/checkout", "POST", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/orders/{number}", "GET", "404")))
}

func TestRouter_InsufficientStock(t *testing.T) {
	_, _, router := newDemoServer(t)
	body := `{"items":[{"productId":"prod-mug","variantId":"var-mug","quantity":4}],
		"email":"g@example.am","phone":"1","shippingMethod":"pickup","paymentMethod":"idram"}`

	rec := do(router, http.MethodPost, "/api/v1/checkout", body, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "urn:storefront:problem:insufficient-stock", p.Type)
	assert.Contains(t, p.Detail, "MUG-WHITE")
}

func TestRouter_Health(t *testing.T) {
	_, _, router := newDemoServer(t)
	rec := do(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	failing := NewRouter(RouterConfig{
		Service: &MockCheckoutService{},
		Ping:    func(context.Context) error { return errors.New("db down") },
	})
	rec = do(failing, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	_, _, router := newDemoServer(t)
	do(router, http.MethodPost, "/api/v1/checkout", `{}`, nil)

	rec := do(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_checkout_total{result="validation"} 1`)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	observer := &MockObserver{}
	router := NewRouter(RouterConfig{
		Service:  &MockCheckoutService{Order: testOrder("260310-00001")},
		Logger:   logger.NewWithWriter(&buf, "storefront", "debug"),
		Observer: observer,
	})

	rec := do(router, http.MethodGet, "/api/v1/orders/260310-00001", "", map[string]string{"X-Request-Id": "req-123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "request completed", entry[slog.MessageKey])
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "/api/v1/orders/{number}", entry["route"])
	assert.EqualValues(t, 200, entry["status"])

	require.Len(t, observer.Observations, 1)
	assert.Equal(t, requestObservation{Handler: "/api/v1/orders/{number}", Method: "GET", Status: 200}, observer.Observations[0])
}

func TestRouter_UnmatchedRoute(t *testing.T) {
	observer := &MockObserver{}
	router := NewRouter(RouterConfig{Service: &MockCheckoutService{}, Observer: observer})

	rec := do(router, http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, observer.Observations, 1)
	assert.Equal(t, "unmatched", observer.Observations[0].Handler)
}
