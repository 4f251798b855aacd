package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apisearch",
			Name:      "search_requests_total",
			Help:      "Total number of per-index search requests",
		},
		[]string{"status"}, // "ok" / "error"
	)

	SearchCompileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "apisearch",
			Name:      "search_compile_duration_seconds",
			Help:      "Query compilation duration in seconds",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		},
	)

	SearchEngineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apisearch",
			Name:      "search_engine_duration_seconds",
			Help:      "Engine round-trip duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"status"},
	)

	SearchFanoutWidth = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "apisearch",
			Name:      "search_fanout_width",
			Help:      "Number of indices targeted by one search",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apisearch",
			Name:      "search_errors_total",
			Help:      "Total search errors",
		},
		[]string{"error_type"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apisearch",
			Name:      "search_cache_total",
			Help:      "Search response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchCompileDuration)
	prometheus.MustRegister(SearchEngineDuration)
	prometheus.MustRegister(SearchFanoutWidth)
	prometheus.MustRegister(SearchErrorsTotal)
	prometheus.MustRegister(SearchCacheTotal)
	searchMetricsRegistered = true
}
