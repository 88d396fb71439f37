package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Henry-Sarabia/apicalypse"

	"github.com/eightythreeapps/collectr/logging"
	"github.com/eightythreeapps/collectr/metrics"
	"github.com/eightythreeapps/collectr/platform"
)

const igdbBaseURL = "https://api.igdb.com/v4"

// igdbSearchFields is the field selection for game search results.
var igdbSearchFields = []string{
	"id", "name", "slug", "summary", "cover.url",
	"platforms.name", "platforms.abbreviation",
	"involved_companies.company.name", "involved_companies.publisher",
	"first_release_date",
}

// igdbPlatformIDs translates a canonical platform into IGDB's numeric
// platform ids for query filters. Canonical platforms without an entry are
// silently left unfiltered. This table is intentionally independent from
// the RAWG one: the taxonomies are not isomorphic.
var igdbPlatformIDs = map[platform.Platform][]int{
	platform.SNES:           {19},
	platform.NES:            {18},
	platform.N64:            {4},
	platform.GameCube:       {21},
	platform.Wii:            {5},
	platform.WiiU:           {41},
	platform.Switch:         {130},
	platform.PS1:            {7},
	platform.PS2:            {8},
	platform.PS3:            {9},
	platform.PS4:            {48},
	platform.PS5:            {167},
	platform.PSP:            {38},
	platform.PSVita:         {46},
	platform.Xbox:           {11},
	platform.Xbox360:        {12},
	platform.XboxOne:        {49},
	platform.XboxSeriesX:    {169},
	platform.GameBoy:        {33},
	platform.GameBoyColor:   {22},
	platform.GameBoyAdvance: {24},
	platform.DS:             {20},
	platform.N3DS:           {37},
	platform.Genesis:        {29},
	platform.DreamCast:      {23},
	platform.Saturn:         {32},
}

// igdbAbbreviations normalizes IGDB platform abbreviations into the
// canonical vocabulary. Unmapped abbreviations collapse to Other.
var igdbAbbreviations = map[string]platform.Platform{
	"SNES":     platform.SNES,
	"NES":      platform.NES,
	"N64":      platform.N64,
	"NGC":      platform.GameCube,
	"GC":       platform.GameCube,
	"Wii":      platform.Wii,
	"WiiU":     platform.WiiU,
	"Switch":   platform.Switch,
	"PS":       platform.PS1,
	"PS1":      platform.PS1,
	"PS2":      platform.PS2,
	"PS3":      platform.PS3,
	"PS4":      platform.PS4,
	"PS5":      platform.PS5,
	"PSP":      platform.PSP,
	"Vita":     platform.PSVita,
	"Xbox":     platform.Xbox,
	"X360":     platform.Xbox360,
	"XONE":     platform.XboxOne,
	"Series X": platform.XboxSeriesX,
	"GB":       platform.GameBoy,
	"GBC":      platform.GameBoyColor,
	"GBA":      platform.GameBoyAdvance,
	"NDS":      platform.DS,
	"3DS":      platform.N3DS,
	"MD":       platform.Genesis,
	"DC":       platform.DreamCast,
	"Saturn":   platform.Saturn,
	"2600":     platform.Atari2600,
}

// igdbGame is IGDB's native game record, decoded only as deep as the
// fields we select. It never crosses the adapter boundary.
type igdbGame struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Summary          string `json:"summary"`
	FirstReleaseDate int64  `json:"first_release_date"`
	Cover            struct {
		URL string `json:"url"`
	} `json:"cover"`
	Platforms []struct {
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
	} `json:"platforms"`
	InvolvedCompanies []igdbInvolvedCompany `json:"involved_companies"`
}

type igdbInvolvedCompany struct {
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
	Publisher bool `json:"publisher"`
}

// IGDBProvider is the primary metadata source. It talks to the IGDB v4 API
// with apicalypse queries and a cached Twitch App Access Token.
type IGDBProvider struct {
	clientID   string
	tokens     *tokenSource
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewIGDBProvider creates the primary provider. Credentials are required;
// the token itself is fetched lazily on first use.
func NewIGDBProvider(clientID, clientSecret string) (*IGDBProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("IGDB Client ID and Secret are required")
	}

	return &IGDBProvider{
		clientID:   clientID,
		tokens:     newTokenSource(clientID, clientSecret),
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    igdbBaseURL,
		now:        time.Now,
	}, nil
}

func (p *IGDBProvider) Name() string {
	return "igdb"
}

// Search queries /games with free-text search, pagination and an optional
// platform filter. Every failure degrades to an empty result set.
func (p *IGDBProvider) Search(ctx context.Context, query string, plat platform.Platform, limit, offset int) []SearchResult {
	opts := []apicalypse.Option{
		apicalypse.Fields(igdbSearchFields...),
		apicalypse.Search("", query),
		apicalypse.Limit(limit),
		apicalypse.Offset(offset),
	}
	if ids, ok := igdbPlatformIDs[plat]; ok && plat != platform.None {
		opts = append(opts, apicalypse.Where(fmt.Sprintf("platforms = (%s)", joinInts(ids))))
	}

	var games []igdbGame
	if err := p.request(ctx, p.baseURL+"/games", &games, opts...); err != nil {
		logging.Warn("igdb search failed", "query", query, "error", err)
		metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
		return nil
	}
	metrics.ProviderRequests.WithLabelValues(p.Name(), requestStatus(len(games))).Inc()

	results := make([]SearchResult, 0, len(games))
	for _, g := range games {
		results = append(results, p.convertGame(g))
	}
	return results
}

// SearchBarcode looks up release records keyed by UPC and projects their
// embedded game sub-records. Results are exact-identifier matches and carry
// a relevance score of 1.0.
func (p *IGDBProvider) SearchBarcode(ctx context.Context, upc string) []SearchResult {
	fields := make([]string, 0, len(igdbSearchFields))
	for _, f := range igdbSearchFields {
		fields = append(fields, "game."+f)
	}

	opts := []apicalypse.Option{
		apicalypse.Fields(fields...),
		apicalypse.Where(fmt.Sprintf("upc = %q", upc)),
	}

	var releases []struct {
		Game *igdbGame `json:"game"`
	}
	if err := p.request(ctx, p.baseURL+"/release_dates", &releases, opts...); err != nil {
		logging.Warn("igdb barcode search failed", "upc", upc, "error", err)
		metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
		return nil
	}
	metrics.ProviderRequests.WithLabelValues(p.Name(), requestStatus(len(releases))).Inc()

	results := make([]SearchResult, 0, len(releases))
	for _, rel := range releases {
		if rel.Game == nil {
			continue
		}
		r := p.convertGame(*rel.Game)
		r.Barcode = upc
		r.RelevanceScore = 1.0
		results = append(results, r)
	}
	return results
}

// GetGame fetches a single game by its IGDB id, for exact lookups via a
// previously returned NativeID.
func (p *IGDBProvider) GetGame(ctx context.Context, id int) (*SearchResult, error) {
	opts := []apicalypse.Option{
		apicalypse.Fields(igdbSearchFields...),
		apicalypse.Where(fmt.Sprintf("id = %d", id)),
	}

	var games []igdbGame
	if err := p.request(ctx, p.baseURL+"/games", &games, opts...); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("igdb game %d not found", id)
	}

	r := p.convertGame(games[0])
	return &r, nil
}

// request builds an apicalypse POST, attaches auth headers and decodes the
// JSON response into out.
func (p *IGDBProvider) request(ctx context.Context, endpoint string, out any, opts ...apicalypse.Option) error {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate with IGDB: %w", err)
	}

	req, err := apicalypse.NewRequest(http.MethodPost, endpoint, opts...)
	if err != nil {
		return fmt.Errorf("failed to build IGDB request: %w", err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Client-ID", p.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("IGDB request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("IGDB request failed: unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode IGDB response: %w", err)
	}
	return nil
}

func (p *IGDBProvider) convertGame(g igdbGame) SearchResult {
	plat := platform.Other
	if len(g.Platforms) > 0 {
		if mapped, ok := igdbAbbreviations[g.Platforms[0].Abbreviation]; ok {
			plat = mapped
		}
	}

	r := newResult(fmt.Sprintf("igdb_%d", g.ID), g.Name, plat, p.now())
	r.Publisher = igdbPublisher(g.InvolvedCompanies)
	r.Year = yearFromUnix(g.FirstReleaseDate, p.now())
	r.CoverURL = highResCoverURL(g.Cover.URL)
	r.Synopsis = g.Summary
	r.NativeID = g.ID
	return r
}

// igdbPublisher prefers the involved company flagged as publisher, falls
// back to the first company, then to "Unknown".
func igdbPublisher(companies []igdbInvolvedCompany) string {
	for _, c := range companies {
		if c.Publisher && c.Company.Name != "" {
			return c.Company.Name
		}
	}
	if len(companies) > 0 && companies[0].Company.Name != "" {
		return companies[0].Company.Name
	}
	return unknownPublisher
}

// yearFromUnix converts IGDB's unix release timestamp to a calendar year,
// falling back to the current year when absent.
func yearFromUnix(ts int64, now time.Time) int {
	if ts == 0 {
		return now.Year()
	}
	return time.Unix(ts, 0).UTC().Year()
}

// highResCoverURL upgrades IGDB's thumbnail cover path to the 720p variant.
func highResCoverURL(coverURL string) string {
	if coverURL == "" {
		return ""
	}
	return strings.Replace(coverURL, "/t_thumb/", "/t_720p/", 1)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// requestStatus labels a successful provider call by whether it produced
// any records.
func requestStatus(n int) string {
	if n == 0 {
		return "empty"
	}
	return "ok"
}
