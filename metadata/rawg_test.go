package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eightythreeapps/collectr/platform"
)

func newTestRAWGProvider(baseURL, apiKey string) *RAWGProvider {
	p := NewRAWGProvider(apiKey)
	p.baseURL = baseURL
	return p
}

func TestRAWGProvider_Search(t *testing.T) {
	var gotQuery url.Values
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()

		fmt.Fprint(w, `{
			"count": 2,
			"results": [
				{
					"id": 5679,
					"name": "The Elder Scrolls V: Skyrim",
					"slug": "the-elder-scrolls-v-skyrim",
					"description_raw": "Dragons.",
					"background_image": "https://media.rawg.io/media/games/skyrim.jpg",
					"released": "2011-11-11",
					"platforms": [
						{"platform": {"id": 1, "name": "Something Modern", "slug": "hyper-console"}},
						{"platform": {"id": 7, "name": "Nintendo Switch", "slug": "nintendo-switch"}}
					],
					"publishers": [{"id": 1, "name": "Bethesda Softworks"}]
				},
				{
					"id": 9001,
					"name": "Mystery Game",
					"slug": "mystery-game"
				}
			]
		}`)
	}))
	defer srv.Close()

	p := newTestRAWGProvider(srv.URL, "secret-key")
	results := p.Search(context.Background(), "skyrim", platform.Switch, 20, 40)

	assert.Equal(t, "/games", gotPath)
	assert.Equal(t, "skyrim", gotQuery.Get("search"))
	assert.Equal(t, "20", gotQuery.Get("page_size"))
	assert.Equal(t, "3", gotQuery.Get("page"))
	assert.Equal(t, "-relevance,-rating", gotQuery.Get("ordering"))
	assert.Equal(t, "secret-key", gotQuery.Get("key"))
	assert.Equal(t, "nintendo-switch", gotQuery.Get("platforms"))

	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, "rawg_5679", first.ID)
	assert.Equal(t, "The Elder Scrolls V: Skyrim", first.Title)
	// First platform slug with a canonical mapping wins.
	assert.Equal(t, platform.Switch, first.Platform)
	assert.Equal(t, "Bethesda Softworks", first.Publisher)
	assert.Equal(t, 2011, first.Year)
	assert.Equal(t, "https://media.rawg.io/media/games/skyrim.jpg", first.CoverURL)
	assert.Equal(t, "Dragons.", first.Synopsis)
	// RAWG records carry no native id for future exact lookups.
	assert.Zero(t, first.NativeID)

	second := results[1]
	assert.Equal(t, platform.Other, second.Platform)
	assert.Equal(t, "Unknown", second.Publisher)
	assert.Equal(t, time.Now().Year(), second.Year)
}

func TestRAWGProvider_Search_PageSizeCap(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"count":0,"results":[]}`)
	}))
	defer srv.Close()

	p := newTestRAWGProvider(srv.URL, "")
	p.Search(context.Background(), "mario", platform.None, 100, 0)

	assert.Equal(t, "40", gotQuery.Get("page_size"))
	assert.Equal(t, "1", gotQuery.Get("page"))
	// No API key and no platform filter means neither parameter is sent.
	assert.False(t, gotQuery.Has("key"))
	assert.False(t, gotQuery.Has("platforms"))
}

func TestRAWGProvider_Search_DegradesToEmpty(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		p := newTestRAWGProvider(srv.URL, "")
		assert.Empty(t, p.Search(context.Background(), "mario", platform.None, 20, 0))
	})

	t.Run("malformed payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>not json</html>`)
		}))
		defer srv.Close()

		p := newTestRAWGProvider(srv.URL, "")
		assert.Empty(t, p.Search(context.Background(), "mario", platform.None, 20, 0))
	})

	t.Run("unreachable host", func(t *testing.T) {
		p := newTestRAWGProvider("http://127.0.0.1:1", "")
		assert.Empty(t, p.Search(context.Background(), "mario", platform.None, 20, 0))
	})
}

func TestRAWGProvider_GetGame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/5679", r.URL.Path)
		fmt.Fprint(w, `{"id": 5679, "name": "The Elder Scrolls V: Skyrim", "released": "2011-11-11"}`)
	}))
	defer srv.Close()

	p := newTestRAWGProvider(srv.URL, "")
	r, err := p.GetGame(context.Background(), 5679)
	require.NoError(t, err)
	assert.Equal(t, "rawg_5679", r.ID)
	assert.Equal(t, 2011, r.Year)
}

func TestRAWGPlatformTables(t *testing.T) {
	for slug, p := range rawgSlugPlatforms {
		assert.True(t, p.Valid(), "slug %q maps to unknown platform %q", slug, p)
	}
	for p := range rawgFilterSlugs {
		assert.True(t, p.Valid(), "filter table keyed by unknown platform %q", p)
	}
}

func TestYearFromDate(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2011, yearFromDate("2011-11-11", now))
	assert.Equal(t, 2026, yearFromDate("", now))
	assert.Equal(t, 2026, yearFromDate("sometime in the 90s", now))
}
