// Package fixture provides a static scoreboard for dry runs and local testing.
package fixture

import (
	"context"

	"ffbot/internal/league"
)

// Provider returns a deterministic scoreboard.
type Provider struct{}

var _ league.Provider = Provider{}

func New() Provider { return Provider{} }

// Scoreboard returns a mix of close games, blowouts and a bye week.
func (Provider) Scoreboard(ctx context.Context) ([]league.Matchup, error) {
	_ = ctx
	return []league.Matchup{
		{
			Home:      league.Team{ID: 1, Abbrev: "AAA", Name: "Alpha Team"},
			HomeScore: 100,
			Away:      &league.Team{ID: 2, Abbrev: "BBB", Name: "Beta Bandits"},
			AwayScore: 95,
		},
		{
			Home:      league.Team{ID: 3, Abbrev: "CCC", Name: "Gamma Rays"},
			HomeScore: 131.4,
			Away:      &league.Team{ID: 4, Abbrev: "DDD", Name: "Delta Force"},
			AwayScore: 88.02,
		},
		{
			Home:      league.Team{ID: 5, Abbrev: "EEE", Name: "Echo Chamber"},
			HomeScore: 77.5,
		},
	}, nil
}
