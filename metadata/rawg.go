package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/eightythreeapps/collectr/logging"
	"github.com/eightythreeapps/collectr/metrics"
	"github.com/eightythreeapps/collectr/platform"
)

const (
	rawgBaseURL = "https://api.rawg.io/api"

	// rawgMaxPageSize is the provider-imposed page size cap.
	rawgMaxPageSize = 40
)

// rawgFilterSlugs translates a canonical platform into RAWG's filter slug.
// Canonical platforms without an entry are silently left unfiltered.
var rawgFilterSlugs = map[platform.Platform]string{
	platform.SNES:           "snes",
	platform.NES:            "nes",
	platform.N64:            "nintendo-64",
	platform.GameCube:       "gamecube",
	platform.Wii:            "wii",
	platform.WiiU:           "wii-u",
	platform.Switch:         "nintendo-switch",
	platform.PS1:            "playstation",
	platform.PS2:            "playstation2",
	platform.PS3:            "playstation3",
	platform.PS4:            "playstation4",
	platform.PS5:            "playstation5",
	platform.PSP:            "psp",
	platform.PSVita:         "ps-vita",
	platform.Xbox:           "xbox-old",
	platform.Xbox360:        "xbox360",
	platform.XboxOne:        "xbox-one",
	platform.XboxSeriesX:    "xbox-series-x",
	platform.GameBoy:        "game-boy",
	platform.GameBoyColor:   "game-boy-color",
	platform.GameBoyAdvance: "game-boy-advance",
	platform.DS:             "nintendo-ds",
	platform.N3DS:           "nintendo-3ds",
	platform.Genesis:        "genesis",
	platform.DreamCast:      "dreamcast",
	platform.Saturn:         "sega-saturn",
}

// rawgSlugPlatforms normalizes RAWG's native platform slugs into the
// canonical vocabulary. The slugs RAWG embeds in records differ from its
// filter slugs, so this is a separate table. Unmapped slugs collapse to
// Other.
var rawgSlugPlatforms = map[string]platform.Platform{
	"nintendo-entertainment-system":       platform.NES,
	"super-nintendo-entertainment-system": platform.SNES,
	"nintendo-64":                         platform.N64,
	"nintendo-gamecube":                   platform.GameCube,
	"gamecube":                            platform.GameCube,
	"nintendo-wii":                        platform.Wii,
	"wii":                                 platform.Wii,
	"nintendo-wii-u":                      platform.WiiU,
	"wii-u":                               platform.WiiU,
	"nintendo-switch":                     platform.Switch,
	"playstation":                         platform.PS1,
	"playstation1":                        platform.PS1,
	"playstation-2":                       platform.PS2,
	"playstation2":                        platform.PS2,
	"playstation-3":                       platform.PS3,
	"playstation3":                        platform.PS3,
	"playstation-4":                       platform.PS4,
	"playstation4":                        platform.PS4,
	"playstation-5":                       platform.PS5,
	"playstation5":                        platform.PS5,
	"playstation-portable":                platform.PSP,
	"psp":                                 platform.PSP,
	"playstation-vita":                    platform.PSVita,
	"ps-vita":                             platform.PSVita,
	"xbox":                                platform.Xbox,
	"xbox-old":                            platform.Xbox,
	"xbox-360":                            platform.Xbox360,
	"xbox360":                             platform.Xbox360,
	"xbox-one":                            platform.XboxOne,
	"xbox-series-x":                       platform.XboxSeriesX,
	"game-boy":                            platform.GameBoy,
	"game-boy-color":                      platform.GameBoyColor,
	"game-boy-advance":                    platform.GameBoyAdvance,
	"nintendo-ds":                         platform.DS,
	"nintendo-3ds":                        platform.N3DS,
	"sega-genesis":                        platform.Genesis,
	"genesis":                             platform.Genesis,
	"dreamcast":                           platform.DreamCast,
	"sega-saturn":                         platform.Saturn,
	"atari-2600":                          platform.Atari2600,
}

// rawgGame is RAWG's native game record. It never crosses the adapter
// boundary.
type rawgGame struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	DescriptionRaw  string `json:"description_raw"`
	BackgroundImage string `json:"background_image"`
	Released        string `json:"released"`
	Platforms       []struct {
		Platform struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"platform"`
	} `json:"platforms"`
	Publishers []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"publishers"`
}

type rawgSearchResponse struct {
	Count   int        `json:"count"`
	Results []rawgGame `json:"results"`
}

// RAWGProvider is the fallback metadata source, a plain REST API with an
// optional API key passed as a query parameter.
type RAWGProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewRAWGProvider creates the fallback provider. The API key may be empty.
func NewRAWGProvider(apiKey string) *RAWGProvider {
	return &RAWGProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    rawgBaseURL,
		now:        time.Now,
	}
}

func (p *RAWGProvider) Name() string {
	return "rawg"
}

// Search queries /games with free-text search, page-based pagination and an
// optional platform slug filter. Every failure degrades to an empty result
// set.
func (p *RAWGProvider) Search(ctx context.Context, query string, plat platform.Platform, limit, offset int) []SearchResult {
	pageSize := limit
	if pageSize > rawgMaxPageSize {
		pageSize = rawgMaxPageSize
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	params := url.Values{}
	params.Set("search", query)
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("ordering", "-relevance,-rating")
	if p.apiKey != "" {
		params.Set("key", p.apiKey)
	}
	if slug, ok := rawgFilterSlugs[plat]; ok && plat != platform.None {
		params.Set("platforms", slug)
	}

	var payload rawgSearchResponse
	if err := p.get(ctx, p.baseURL+"/games?"+params.Encode(), &payload); err != nil {
		logging.Warn("rawg search failed", "query", query, "error", err)
		metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
		return nil
	}
	metrics.ProviderRequests.WithLabelValues(p.Name(), requestStatus(len(payload.Results))).Inc()

	results := make([]SearchResult, 0, len(payload.Results))
	for _, g := range payload.Results {
		results = append(results, p.convertGame(g))
	}
	return results
}

// GetGame fetches a single game by its RAWG id.
func (p *RAWGProvider) GetGame(ctx context.Context, id int) (*SearchResult, error) {
	u := fmt.Sprintf("%s/games/%d", p.baseURL, id)
	if p.apiKey != "" {
		u += "?key=" + url.QueryEscape(p.apiKey)
	}

	var g rawgGame
	if err := p.get(ctx, u, &g); err != nil {
		return nil, err
	}

	r := p.convertGame(g)
	return &r, nil
}

func (p *RAWGProvider) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build RAWG request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("RAWG request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("RAWG request failed: unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode RAWG response: %w", err)
	}
	return nil
}

func (p *RAWGProvider) convertGame(g rawgGame) SearchResult {
	r := newResult(fmt.Sprintf("rawg_%d", g.ID), g.Name, rawgPlatform(g), p.now())
	r.Publisher = rawgPublisher(g)
	r.Year = yearFromDate(g.Released, p.now())
	// RAWG's background image is already full resolution.
	r.CoverURL = g.BackgroundImage
	r.Synopsis = g.DescriptionRaw
	return r
}

// rawgPlatform returns the first of the record's platforms with a canonical
// mapping, else Other.
func rawgPlatform(g rawgGame) platform.Platform {
	for _, entry := range g.Platforms {
		if mapped, ok := rawgSlugPlatforms[entry.Platform.Slug]; ok {
			return mapped
		}
	}
	return platform.Other
}

func rawgPublisher(g rawgGame) string {
	if len(g.Publishers) > 0 && g.Publishers[0].Name != "" {
		return g.Publishers[0].Name
	}
	return unknownPublisher
}

// yearFromDate extracts the year from RAWG's "2006-01-02" release date,
// falling back to the current year when absent or unparsable.
func yearFromDate(released string, now time.Time) int {
	if released == "" {
		return now.Year()
	}
	t, err := time.Parse("2006-01-02", released)
	if err != nil {
		return now.Year()
	}
	return t.Year()
}
