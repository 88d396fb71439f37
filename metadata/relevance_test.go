package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevance_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		title    string
		expected float64
	}{
		{"exact match", "zelda", "zelda", 1.0},
		{"exact match is case-insensitive", "ZELDA", "zelda", 1.0},
		{"prefix match", "zelda", "Zelda II", 0.9},
		{"whole word match", "man", "the man", 0.8},
		{"substring without word boundary", "man", "woman", 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, relevance(tt.query, tt.title), 1e-9)
		})
	}
}

func TestRelevance_SelfMatchIsAlwaysExact(t *testing.T) {
	for _, s := range []string{"a", "Super Mario Bros.", "1080 Snowboarding", "Pokémon"} {
		assert.Equal(t, 1.0, relevance(s, s), "score(%q, %q)", s, s)
	}
}

func TestRelevance_FuzzyNeverReachesStructuralTiers(t *testing.T) {
	// Completely dissimilar strings fall through to the edit-distance
	// fallback, which is capped strictly below the substring tier.
	score := relevance("zelda", "qwxyt")
	assert.Less(t, score, 0.7)
	assert.InDelta(t, similarity("zelda", "qwxyt")*0.6, score, 1e-9)
}

func TestRelevance_FuzzyScaling(t *testing.T) {
	// One substitution across six characters: similarity 5/6, scaled by 0.6.
	score := relevance("kirbyx", "kirbyz")
	assert.InDelta(t, (5.0/6.0)*0.6, score, 1e-9)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levenshtein(tt.a, tt.b), "distance(%q, %q)", tt.a, tt.b)
	}
}

func TestLevenshtein_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"zelda", "zeldo"},
		{"metroid", "castlevania"},
	}
	for _, p := range pairs {
		assert.Equal(t, levenshtein(p[0], p[1]), levenshtein(p[1], p[0]))
	}
}

func TestSimilarity_EmptyStrings(t *testing.T) {
	assert.Equal(t, 1.0, similarity("", ""))
	assert.Equal(t, 0.0, similarity("abc", ""))
}
