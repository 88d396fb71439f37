package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSearchCounters(t *testing.T) {
	SearchesTotal.WithLabelValues("query").Inc()
	SearchesTotal.WithLabelValues("barcode").Inc()

	queries := testutil.ToFloat64(SearchesTotal.WithLabelValues("query"))
	assert.GreaterOrEqual(t, queries, float64(1))

	barcodes := testutil.ToFloat64(SearchesTotal.WithLabelValues("barcode"))
	assert.GreaterOrEqual(t, barcodes, float64(1))
}

func TestProviderRequests(t *testing.T) {
	ProviderRequests.WithLabelValues("igdb", "ok").Inc()
	ProviderRequests.WithLabelValues("rawg", "error").Inc()

	ok := testutil.ToFloat64(ProviderRequests.WithLabelValues("igdb", "ok"))
	assert.GreaterOrEqual(t, ok, float64(1))

	errs := testutil.ToFloat64(ProviderRequests.WithLabelValues("rawg", "error"))
	assert.GreaterOrEqual(t, errs, float64(1))
}

func TestTokenRefreshes(t *testing.T) {
	TokenRefreshes.WithLabelValues("ok").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(TokenRefreshes.WithLabelValues("ok")), float64(1))
}

func TestRecordSearchDuration(t *testing.T) {
	start := time.Now().Add(-100 * time.Millisecond)

	// Recording must not panic; histograms are asserted by exposition
	// elsewhere.
	RecordSearchDuration("query", start)
	ResultsReturned.Observe(3)
}
