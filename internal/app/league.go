package app

import (
	"context"
	"strings"
	"sync"

	"ffbot/internal/config"
	"ffbot/internal/league"
	"ffbot/internal/league/espn"
	"ffbot/internal/league/fixture"
)

// leagueSource is the provider handed to the report builder. The backing
// provider can be swapped on config reload.
type leagueSource struct {
	mu   sync.RWMutex
	cur  league.Provider
	name string

	espn *espn.Client
}

var _ league.Provider = (*leagueSource)(nil)

func newLeagueSource(cfg *config.Config) *leagueSource {
	s := &leagueSource{espn: espn.NewClient(mapESPNConfig(cfg))}
	s.apply(cfg)
	return s
}

func (s *leagueSource) apply(cfg *config.Config) {
	name := strings.ToLower(strings.TrimSpace(cfg.League.Provider))
	s.espn.Apply(mapESPNConfig(cfg))

	s.mu.Lock()
	defer s.mu.Unlock()
	switch name {
	case config.ProviderFixture:
		s.cur = fixture.New()
	default:
		name = config.ProviderESPN
		s.cur = s.espn
	}
	s.name = name
}

func (s *leagueSource) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *leagueSource) Scoreboard(ctx context.Context) ([]league.Matchup, error) {
	s.mu.RLock()
	p := s.cur
	s.mu.RUnlock()
	return p.Scoreboard(ctx)
}
