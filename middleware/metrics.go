package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records inbound request counts and latencies by route template.
func Metrics(reg prometheus.Registerer) gin.HandlerFunc {
	factory := promauto.With(reg)
	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "luxstay",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Inbound requests by route and status.",
	}, []string{"method", "route", "code"})
	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "luxstay",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Inbound request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
