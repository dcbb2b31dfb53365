// Package league defines the scoreboard model shared by report formatting and
// the upstream league providers.
package league

import "context"

// Team is one fantasy team in a league.
type Team struct {
	ID     int
	Abbrev string
	Name   string
}

// Matchup is one head-to-head pairing for a scoring week.
// Away is nil when the home team has a bye.
type Matchup struct {
	Home      Team
	HomeScore float64
	Away      *Team
	AwayScore float64
}

// IsBye reports whether the matchup has no opponent.
func (m Matchup) IsBye() bool { return m.Away == nil }

// Provider fetches the current week's scoreboard.
// Implementations fetch fresh data on every call; nothing is cached.
type Provider interface {
	Scoreboard(ctx context.Context) ([]Matchup, error)
}
