package espn

import (
	"strings"

	"ffbot/internal/league"
)

// mapScoreboard selects the current matchup period and resolves team ids.
func mapScoreboard(p leagueResponse) []league.Matchup {
	period := p.Status.CurrentMatchupPeriod
	if period <= 0 {
		period = p.ScoringPeriodID
	}

	teams := make(map[int]league.Team, len(p.Teams))
	for _, t := range p.Teams {
		teams[t.ID] = mapTeam(t)
	}

	out := make([]league.Matchup, 0, len(p.Schedule)/2+1)
	for _, e := range p.Schedule {
		if e.MatchupPeriodID != period || e.Home == nil {
			continue
		}
		m := league.Matchup{
			Home:      lookupTeam(teams, e.Home.TeamID),
			HomeScore: sideScore(e.Home),
		}
		if e.Away != nil {
			away := lookupTeam(teams, e.Away.TeamID)
			m.Away = &away
			m.AwayScore = sideScore(e.Away)
		}
		out = append(out, m)
	}
	return out
}

func mapTeam(t teamPayload) league.Team {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(t.Location) + " " + strings.TrimSpace(t.Nickname))
	}
	return league.Team{ID: t.ID, Abbrev: strings.TrimSpace(t.Abbrev), Name: name}
}

func lookupTeam(teams map[int]league.Team, id int) league.Team {
	if t, ok := teams[id]; ok {
		return t
	}
	return league.Team{ID: id}
}

func sideScore(s *sidePayload) float64 {
	if s.TotalPointsLive != nil {
		return *s.TotalPointsLive
	}
	return s.TotalPoints
}
