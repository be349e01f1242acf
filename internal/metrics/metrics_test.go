package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheckout(t *testing.T) {
	m := NewServerMetrics(nil)

	m.ObserveCheckout("committed", 20*time.Millisecond)
	m.ObserveCheckout("committed", 30*time.Millisecond)
	m.ObserveCheckout("insufficient_stock", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CheckoutDuration))
}

func TestObserveRequest(t *testing.T) {
	m := NewServerMetrics(nil)

	m.ObserveRequest("/api/v1/checkout", http.MethodPost, http.StatusCreated, time.Millisecond)
	m.ObserveRequest("/api/v1/checkout", http.MethodPost, http.StatusUnprocessableEntity, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/checkout", "POST", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/checkout", "POST", "422")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewServerMetrics(nil)
	m.ObserveCheckout("validation", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `storefront_checkout_total{result="validation"} 1`))
	assert.Contains(t, body, "storefront_checkout_duration_seconds_bucket")
}
