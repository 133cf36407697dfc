package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetdex",
			Name:      "search_requests_total",
			Help:      "Total number of requests sent to the search engine",
		},
		[]string{"operation", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facetdex",
			Name:      "search_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	SearchHitsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facetdex",
			Name:      "search_hits_returned",
			Help:      "Number of hits returned per search request",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		},
		[]string{"operation"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search engine metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchHitsReturned)
	searchMetricsRegistered = true
}
