// Package espn fetches fantasy football scoreboards from the ESPN league API.
package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"ffbot/internal/league"
)

var ErrLeagueNotConfigured = errors.New("espn: league id required")

// Config controls how the client reaches the ESPN API.
// ESPNS2 and SWID are the session cookies required by private leagues.
type Config struct {
	BaseURL    string
	LeagueID   int64
	Year       int
	ESPNS2     string
	SWID       string
	HTTPClient *http.Client
}

// Client implements league.Provider against the ESPN fantasy API.
type Client struct {
	mu         sync.RWMutex
	cfg        Config
	baseURL    string
	httpClient httpDoer
}

var _ league.Provider = (*Client)(nil)

func NewClient(cfg Config) *Client {
	c := &Client{}
	c.Apply(cfg)
	return c
}

// Apply swaps the league/credentials at runtime.
func (c *Client) Apply(cfg Config) {
	c.mu.Lock()
	c.cfg = cfg
	c.baseURL = normalizeBaseURL(cfg.BaseURL)
	c.httpClient = resolveHTTPClient(cfg.HTTPClient)
	c.mu.Unlock()
}

// Scoreboard returns the matchups of the league's current matchup period.
func (c *Client) Scoreboard(ctx context.Context) ([]league.Matchup, error) {
	c.mu.RLock()
	cfg := c.cfg
	base := c.baseURL
	hc := c.httpClient
	c.mu.RUnlock()

	if cfg.LeagueID <= 0 {
		return nil, ErrLeagueNotConfigured
	}

	req, err := buildRequest(ctx, base, cfg)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("espn: fetch league %d: %w", cfg.LeagueID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("espn: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload leagueResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("espn: decode league %d: %w", cfg.LeagueID, err)
	}
	return mapScoreboard(payload), nil
}

func buildRequest(ctx context.Context, base string, cfg Config) (*http.Request, error) {
	u := base + "/seasons/" + strconv.Itoa(cfg.Year) + "/segments/0/leagues/" + strconv.FormatInt(cfg.LeagueID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Add("view", "mMatchupScore")
	q.Add("view", "mTeam")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	if s2 := strings.TrimSpace(cfg.ESPNS2); s2 != "" {
		req.AddCookie(&http.Cookie{Name: "espn_s2", Value: s2})
	}
	if swid := strings.TrimSpace(cfg.SWID); swid != "" {
		req.AddCookie(&http.Cookie{Name: "SWID", Value: swid})
	}
	return req, nil
}
