// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package music

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/calmverse/internal/breaker"
	"github.com/tomtom215/calmverse/internal/cache"
	"github.com/tomtom215/calmverse/internal/config"
)

// tokenSkew renews the access token this long before Spotify expires it.
const tokenSkew = 30 * time.Second

// SpotifyClient is a Catalog backed by the Spotify Web API using the
// client-credentials flow. Outbound calls are rate limited and guarded by
// a circuit breaker; results, including misses, are cached.
type SpotifyClient struct {
	apiURL       string
	authURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *rate.Limiter
	cb           *breaker.Breaker
	results      *cache.LRU[spotifyResult]

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

type spotifyResult struct {
	details Details
	found   bool
}

// NewSpotifyClient creates a client from configuration.
func NewSpotifyClient(cfg config.SpotifyConfig, httpClient *http.Client) *SpotifyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &SpotifyClient{
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		authURL:      cfg.AuthURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		cb:           breaker.New("spotify", breaker.DefaultSettings()),
		results:      cache.NewLRU[spotifyResult](2000, 6*time.Hour),
		now:          time.Now,
	}
}

func cacheKey(name, artist string) string {
	return strings.ToLower(name) + "\x00" + strings.ToLower(artist)
}

// Lookup searches for "track:<name> artist:<artist>" and returns the first
// hit's largest album image and URI.
func (c *SpotifyClient) Lookup(ctx context.Context, name, artist string) (Details, error) {
	key := cacheKey(name, artist)
	if r, ok := c.results.Get(key); ok {
		if !r.found {
			return Details{}, ErrTrackNotFound
		}
		return r.details, nil
	}

	r, err := breaker.Execute(c.cb, func() (spotifyResult, error) {
		return c.search(ctx, name, artist)
	})
	if err != nil {
		return Details{}, err
	}
	c.results.Add(key, r)
	if !r.found {
		return Details{}, ErrTrackNotFound
	}
	return r.details, nil
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			URI   string `json:"uri"`
			Album struct {
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

func (c *SpotifyClient) search(ctx context.Context, name, artist string) (spotifyResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return spotifyResult{}, fmt.Errorf("spotify rate limit: %w", err)
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return spotifyResult{}, err
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("track:%s artist:%s", name, artist))
	q.Set("type", "track")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/search?"+q.Encode(), http.NoBody)
	if err != nil {
		return spotifyResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return spotifyResult{}, fmt.Errorf("spotify search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			c.invalidateToken()
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return spotifyResult{}, fmt.Errorf("spotify search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return spotifyResult{}, fmt.Errorf("spotify search: decode: %w", err)
	}
	if len(sr.Tracks.Items) == 0 {
		return spotifyResult{found: false}, nil
	}

	item := sr.Tracks.Items[0]
	d := Details{}
	if len(item.Album.Images) > 0 {
		d.AlbumCoverURL = item.Album.Images[0].URL
	}
	if item.URI != "" {
		uri := item.URI
		d.SpotifyURI = &uri
	}
	return spotifyResult{details: d, found: true}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached token or fetches a new one.
func (c *SpotifyClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token: status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("spotify token: decode: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("spotify token: empty access_token")
	}

	c.token = tr.AccessToken
	c.expiresAt = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSkew)
	return c.token, nil
}

func (c *SpotifyClient) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
