package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the client-side counters for calls to the remote API.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	refreshes    *prometheus.CounterVec
	invalidation prometheus.Counter
}

// NewMetrics registers the client metrics with reg. A nil reg builds
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "luxstay_api_requests_total",
			Help: "Calls to the remote booking API by route and status code.",
		}, []string{"method", "route", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "luxstay_api_request_duration_seconds",
			Help:    "Latency of calls to the remote booking API.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.3, 0.6, 1, 3, 6, 10},
		}, []string{"method", "route"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "luxstay_api_token_refresh_total",
			Help: "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		invalidation: f.NewCounter(prometheus.CounterOpts{
			Name: "luxstay_session_invalidated_total",
			Help: "Sessions cleared after an unrecoverable authorization failure.",
		}),
	}
}
