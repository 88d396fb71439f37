package metadata

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/eightythreeapps/collectr/logging"
	"github.com/eightythreeapps/collectr/metrics"
	"github.com/eightythreeapps/collectr/platform"
	"github.com/eightythreeapps/collectr/tracing"
)

const (
	minQueryLen   = 2
	minBarcodeLen = 8

	defaultLimit = 20
)

// Input validation is the only error class surfaced to callers; provider
// failures are absorbed at the adapter boundary.
var (
	ErrQueryTooShort   = errors.New("query must be at least 2 characters")
	ErrBarcodeTooShort = errors.New("barcode must be at least 8 characters")
)

// Service aggregates both metadata providers into one ranked result list.
// The fallback provider is only queried when the primary under-returns.
type Service struct {
	primary  Provider
	fallback Provider
}

// NewService creates an aggregator over a primary and a fallback provider.
func NewService(primary, fallback Provider) *Service {
	return &Service{primary: primary, fallback: fallback}
}

// Search resolves a free-text query into a deduplicated, relevance-ordered
// list of at most limit results. Provider failures degrade to fewer (or
// zero) results; only input validation errors are returned.
func (s *Service) Search(ctx context.Context, query string, plat platform.Platform, limit, offset int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLen {
		return nil, ErrQueryTooShort
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	ctx, span := tracing.StartSpan(ctx, "metadata.Search", trace.WithAttributes(
		attribute.String("search.query", query),
		attribute.String("search.platform", plat.String()),
		attribute.Int("search.limit", limit),
		attribute.Int("search.offset", offset),
	))
	defer span.End()

	start := time.Now()
	defer metrics.RecordSearchDuration("query", start)
	metrics.SearchesTotal.WithLabelValues("query").Inc()

	results := s.collect(ctx, query, plat, limit, offset)

	span.SetAttributes(attribute.Int("search.results", len(results)))
	metrics.ResultsReturned.Observe(float64(len(results)))
	return results, nil
}

// collect runs the fan-out, dedup, sort and truncate steps. A panicking
// provider is a contract violation; the whole search degrades to an empty
// list rather than failing the caller.
func (s *Service) collect(ctx context.Context, query string, plat platform.Platform, limit, offset int) (results []SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("search aggregation failed", "query", query, "panic", r)
			results = nil
		}
	}()

	for _, r := range s.primary.Search(ctx, query, plat, limit, offset) {
		r.RelevanceScore = relevance(query, r.Title)
		results = append(results, r)
	}

	// The fallback fills the shortfall only. Note a primary outage is
	// indistinguishable from genuine scarcity here; both trigger the
	// fallback query.
	if len(results) < limit {
		shortfall := limit - len(results)
		for _, r := range s.fallback.Search(ctx, query, plat, shortfall, offset) {
			if containsTitle(results, r.Title) {
				continue
			}
			r.RelevanceScore = relevance(query, r.Title)
			results = append(results, r)
		}
	}

	// Stable sort keeps primary-before-fallback insertion order on ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// SearchBarcode resolves a UPC against the providers capable of exact
// identifier lookup. Results are unranked and never deduplicated; the
// lookup is expected to be unambiguous.
func (s *Service) SearchBarcode(ctx context.Context, upc string) ([]SearchResult, error) {
	upc = strings.TrimSpace(upc)
	if utf8.RuneCountInString(upc) < minBarcodeLen {
		return nil, ErrBarcodeTooShort
	}

	ctx, span := tracing.StartSpan(ctx, "metadata.SearchBarcode", trace.WithAttributes(
		attribute.String("search.upc", upc),
	))
	defer span.End()

	start := time.Now()
	defer metrics.RecordSearchDuration("barcode", start)
	metrics.SearchesTotal.WithLabelValues("barcode").Inc()

	results := s.collectBarcode(ctx, upc)

	span.SetAttributes(attribute.Int("search.results", len(results)))
	metrics.ResultsReturned.Observe(float64(len(results)))
	return results, nil
}

func (s *Service) collectBarcode(ctx context.Context, upc string) (results []SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("barcode search failed", "upc", upc, "panic", r)
			results = nil
		}
	}()

	for _, prov := range []Provider{s.primary, s.fallback} {
		bp, ok := prov.(BarcodeProvider)
		if !ok {
			continue
		}
		results = append(results, bp.SearchBarcode(ctx, upc)...)
	}
	return results
}

// containsTitle reports whether a result with the same title, compared
// case-insensitively, was already accepted. Cross-provider dedup is
// title-based only: ids are not comparable across sources.
func containsTitle(results []SearchResult, title string) bool {
	for _, r := range results {
		if strings.EqualFold(r.Title, title) {
			return true
		}
	}
	return false
}
