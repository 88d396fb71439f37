package metadata

import (
	"regexp"
	"strings"
)

// Relevance tiers. Fuzzy matches are scaled by fuzzyCeiling so they can
// never outrank a structural match; the ordering of identical inputs is
// stable across runs.
const (
	scoreExact     = 1.0
	scorePrefix    = 0.9
	scoreWholeWord = 0.8
	scoreSubstring = 0.7
	fuzzyCeiling   = 0.6
)

// relevance scores a candidate title against a query, case-insensitively,
// returning a value in [0,1]. Tiers are evaluated in order and the first
// match wins: exact, prefix, whole word, substring, then a normalized
// edit-distance fallback.
func relevance(query, title string) float64 {
	q := strings.ToLower(query)
	t := strings.ToLower(title)

	if q == t {
		return scoreExact
	}
	if strings.HasPrefix(t, q) {
		return scorePrefix
	}
	if wordBoundary(q).MatchString(t) {
		return scoreWholeWord
	}
	if strings.Contains(t, q) {
		return scoreSubstring
	}
	return similarity(q, t) * fuzzyCeiling
}

// wordBoundary builds a whole-word matcher for the (already lowercased)
// query.
func wordBoundary(q string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(q) + `\b`)
}

// similarity is normalized Levenshtein similarity between two strings:
// 1 - distance/len(longer), in [0,1].
func similarity(a, b string) float64 {
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	if len(longer) == 0 {
		return 1.0
	}
	dist := levenshtein(longer, shorter)
	return float64(len(longer)-dist) / float64(len(longer))
}

// levenshtein computes the edit distance between two strings with unit
// costs for insertion, deletion and substitution, using a two-row matrix.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if a == b {
		return 0
	}

	lenA, lenB := len(a), len(b)
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = minOf(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[lenB]
}

func minOf(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
