// Package metrics exposes Prometheus instrumentation for the search engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts aggregated searches by kind: "query" or "barcode".
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collectr_searches_total",
		Help: "Total number of search requests handled by the aggregator.",
	}, []string{"kind"})

	// ProviderRequests counts outbound provider calls.
	// status: ok, empty, error
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collectr_provider_requests_total",
		Help: "Total number of provider requests by outcome.",
	}, []string{"provider", "status"})

	// SearchDuration observes end-to-end aggregation latency.
	SearchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collectr_search_duration_seconds",
		Help:    "Duration of aggregated searches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// ResultsReturned observes how many records a search produced after
	// dedup and truncation.
	ResultsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "collectr_search_results_returned",
		Help:    "Number of results returned per search.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 40},
	})

	// TokenRefreshes counts credential exchanges against the token endpoint.
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collectr_token_refreshes_total",
		Help: "Total number of access token exchanges by outcome.",
	}, []string{"status"}) // status: ok, error
)

// RecordSearchDuration records the time taken for one aggregated search.
func RecordSearchDuration(kind string, start time.Time) {
	SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
