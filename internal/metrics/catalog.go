package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog and cart Prometheus metrics.
var (
	CatalogQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopfront",
			Name:      "catalog_queries_total",
			Help:      "Total number of catalog provider queries",
		},
		[]string{"provider", "kind", "status"},
	)

	CatalogQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopfront",
			Name:      "catalog_query_duration_seconds",
			Help:      "Catalog provider query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"provider", "kind"},
	)

	StaleResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopfront",
			Name:      "listing_stale_results_total",
			Help:      "Query results discarded because a newer query superseded them",
		},
		[]string{"slot"}, // "replace" / "append"
	)

	CartOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopfront",
			Name:      "cart_operations_total",
			Help:      "Cart API operations by outcome",
		},
		[]string{"op", "result"}, // result: "ok" / "rejected" / "error"
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers catalog and cart metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(CatalogQueriesTotal)
	prometheus.MustRegister(CatalogQueryDuration)
	prometheus.MustRegister(StaleResultsTotal)
	prometheus.MustRegister(CartOperationsTotal)
	catalogMetricsRegistered = true
}
