package availability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts availability queries by outcome.
type Metrics struct {
	queries    *prometheus.CounterVec
	superseded prometheus.Counter
}

// NewMetrics registers the collectors with reg. A nil reg keeps them
// unregistered, which tests rely on.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luxstay",
			Subsystem: "availability",
			Name:      "queries_total",
			Help:      "Availability queries by outcome.",
		}, []string{"outcome"}),
		superseded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "luxstay",
			Subsystem: "availability",
			Name:      "superseded_total",
			Help:      "Availability responses discarded because a newer query was issued.",
		}),
	}
}
