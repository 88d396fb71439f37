package metadata

import (
	"context"
	"time"

	"github.com/eightythreeapps/collectr/platform"
)

// SearchResult is the provider-agnostic record returned to callers. Results
// are built fresh for every query and never mutated after construction;
// persistence and review workflows belong to the caller.
type SearchResult struct {
	// ID is globally unique and provenance-visible: "{providerTag}_{nativeID}".
	ID       string
	Title    string
	Platform platform.Platform
	// Publisher is "Unknown" when the source has no attributable publisher.
	Publisher string
	// Year falls back to the current calendar year when the source carries
	// no release date. That is policy, not an error.
	Year int
	// CoverURL, when set, is the highest-resolution variant the provider
	// exposes.
	CoverURL string
	Synopsis string
	// NativeID is the provider's stable numeric catalog id, when it has one.
	NativeID int
	// Barcode is populated only on barcode-search results.
	Barcode string
	// CreatedBy is fixed to "system" at search time; there is no user
	// attribution yet.
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PendingReview bool
	// RelevanceScore is in [0,1]. Barcode results are exact-identifier
	// matches and carry 1.0.
	RelevanceScore float64
}

// Provider is one external metadata source. Implementations translate
// native records into SearchResults and normalize native platform codes
// into the canonical vocabulary.
//
// Search never returns an error: provider failures (auth, network,
// timeout, malformed payloads) degrade to an empty slice so one flaky
// source can never abort an aggregation. Failures are logged by the
// implementation.
type Provider interface {
	// Name returns the provider tag used for result IDs (e.g. "igdb").
	Name() string
	// Search finds games matching the query, optionally filtered to a
	// canonical platform (platform.None disables the filter).
	Search(ctx context.Context, query string, p platform.Platform, limit, offset int) []SearchResult
}

// BarcodeProvider is implemented by providers capable of exact
// identifier (UPC) lookups.
type BarcodeProvider interface {
	Provider
	// SearchBarcode looks up releases keyed by the identifier. The same
	// degrade-to-empty policy as Search applies.
	SearchBarcode(ctx context.Context, upc string) []SearchResult
}

const (
	// systemUser is the provenance recorded on freshly aggregated results.
	systemUser = "system"

	unknownPublisher = "Unknown"
)

// newResult fills the fields every freshly constructed record shares.
func newResult(id, title string, p platform.Platform, now time.Time) SearchResult {
	return SearchResult{
		ID:            id,
		Title:         title,
		Platform:      p,
		CreatedBy:     systemUser,
		CreatedAt:     now,
		UpdatedAt:     now,
		PendingReview: false,
	}
}
