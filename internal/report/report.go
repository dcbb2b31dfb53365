// Package report formats league scoreboards into short chat messages.
package report

import (
	"fmt"
	"strings"

	"ffbot/internal/league"
)

const (
	HeaderScoreUpdate = "Score Update"
	HeaderCloseScores = "Close Scores"

	// CloseMargin is the exclusive point margin under which a game counts as close.
	CloseMargin = 10.0

	noneLine = "None"
)

// Full lists every matchup with full team names.
func Full(matchups []league.Matchup) string {
	lines := []string{HeaderScoreUpdate}
	for _, m := range matchups {
		if m.IsBye() {
			continue
		}
		lines = append(lines, scoreLine(m.Home.Name, m.HomeScore, m.AwayScore, m.Away.Name))
	}
	return strings.Join(lines, "\n")
}

// Short lists every matchup with team abbreviations.
func Short(matchups []league.Matchup) string {
	lines := []string{HeaderScoreUpdate}
	for _, m := range matchups {
		if m.IsBye() {
			continue
		}
		lines = append(lines, scoreLine(m.Home.Abbrev, m.HomeScore, m.AwayScore, m.Away.Abbrev))
	}
	return strings.Join(lines, "\n")
}

// Close lists matchups decided by less than CloseMargin points, or "None".
func Close(matchups []league.Matchup) string {
	lines := []string{HeaderCloseScores}
	for _, m := range matchups {
		if m.IsBye() || !IsClose(m) {
			continue
		}
		lines = append(lines, scoreLine(m.Home.Abbrev, m.HomeScore, m.AwayScore, m.Away.Abbrev))
	}
	if len(lines) == 1 {
		lines = append(lines, noneLine)
	}
	return strings.Join(lines, "\n")
}

// IsClose reports whether -CloseMargin < away-home < CloseMargin.
func IsClose(m league.Matchup) bool {
	diff := m.AwayScore - m.HomeScore
	return -CloseMargin < diff && diff < CloseMargin
}

func scoreLine(home string, homeScore, awayScore float64, away string) string {
	return fmt.Sprintf("%s %.2f - %.2f %s", home, homeScore, awayScore, away)
}
