package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type ServerMetrics struct {
	Requests         *prometheus.CounterVec
	Latency          *prometheus.HistogramVec
	Checkouts        *prometheus.CounterVec
	CheckoutDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewServerMetrics registers the collectors on reg. A nil reg means a fresh
// registry, which keeps tests independent of each other.
func NewServerMetrics(reg *prometheus.Registry) *ServerMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"handler", "method"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"result"})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Checkout latency in seconds, including failed attempts.",
		Buckets:   prometheus.DefBuckets,
	})

	reg.MustRegister(requests, latency, checkouts, checkoutDuration)
	return &ServerMetrics{
		Requests:         requests,
		Latency:          latency,
		Checkouts:        checkouts,
		CheckoutDuration: checkoutDuration,
		gatherer:         reg,
	}
}

func (m *ServerMetrics) ObserveCheckout(result string, elapsed time.Duration) {
	m.Checkouts.WithLabelValues(result).Inc()
	m.CheckoutDuration.Observe(elapsed.Seconds())
}

func (m *ServerMetrics) ObserveRequest(handler, method string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	m.Latency.WithLabelValues(handler, method).Observe(elapsed.Seconds())
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
