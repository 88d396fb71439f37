package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/eightythreeapps/collectr/metrics"
)

const (
	twitchTokenURL = "https://id.twitch.tv/oauth2/token"

	// tokenExpiryBuffer keeps us from handing out a token that would
	// expire mid-flight.
	tokenExpiryBuffer = 5 * time.Minute

	// requestTimeout bounds every outbound provider call.
	requestTimeout = 10 * time.Second
)

// tokenSource obtains and caches a Twitch App Access Token for IGDB using
// the client-credentials grant. It is safe for concurrent use: the mutex is
// held across a refresh so concurrent callers never race into redundant
// exchanges, and a cached token is never read half-written.
//
// The source does not retry. A failed exchange surfaces as an error and the
// owning adapter decides how to degrade.
type tokenSource struct {
	mu           sync.Mutex
	clientID     string
	clientSecret string
	endpoint     string
	httpClient   *http.Client
	now          func() time.Time

	token  string
	expiry time.Time
}

func newTokenSource(clientID, clientSecret string) *tokenSource {
	return &tokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     twitchTokenURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
		now:          time.Now,
	}
}

// Token returns the cached access token, refreshing it when it is absent or
// within the expiry buffer.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Add(tokenExpiryBuffer).Before(t.expiry) {
		return t.token, nil
	}

	token, expiresIn, err := t.exchange(ctx)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.TokenRefreshes.WithLabelValues("ok").Inc()

	t.token = token
	t.expiry = t.now().Add(time.Duration(expiresIn) * time.Second)
	return t.token, nil
}

// exchange performs the client-credentials grant against the token endpoint.
func (t *tokenSource) exchange(ctx context.Context) (string, int, error) {
	vals := url.Values{}
	vals.Set("client_id", t.clientID)
	vals.Set("client_secret", t.clientSecret)
	vals.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(vals.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token exchange failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token exchange failed: unexpected status %s", resp.Status)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", 0, fmt.Errorf("token response contained no access token")
	}

	return result.AccessToken, result.ExpiresIn, nil
}
