// Package obs holds the ambient observability concerns shared across
// indexes: Prometheus metrics and a zap logger.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and histograms an index reports during
// Add/Build/Search. Each Metrics instance registers into its own
// Prometheus registry so creating several indexes in one process (or
// in tests) never collides on metric names.
type Metrics struct {
	Registry *prometheus.Registry

	VectorInserts  prometheus.Counter
	BuildTotal     prometheus.Counter
	BuildDuration  prometheus.Histogram
	SearchQueries  prometheus.Counter
	SearchErrors   prometheus.Counter
	SearchLatency  prometheus.Histogram
}

// NewMetrics creates a fresh, independently registered Metrics set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		VectorInserts: factory.NewCounter(prometheus.CounterOpts{
			Name: "annlib_vector_inserts_total",
			Help: "Total vector insertions into this index.",
		}),
		BuildTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "annlib_index_builds_total",
			Help: "Total index build/train invocations.",
		}),
		BuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "annlib_index_build_duration_seconds",
			Help: "Index build/train wall time.",
		}),
		SearchQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "annlib_search_queries_total",
			Help: "Total search queries.",
		}),
		SearchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "annlib_search_errors_total",
			Help: "Total search queries that returned an error.",
		}),
		SearchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "annlib_search_latency_seconds",
			Help: "Search latency.",
		}),
	}
}
