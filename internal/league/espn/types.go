package espn

// leagueResponse is the subset of the ESPN league payload used to build a scoreboard
// (views mMatchupScore + mTeam).
type leagueResponse struct {
	ID              int64          `json:"id"`
	SeasonID        int            `json:"seasonId"`
	ScoringPeriodID int            `json:"scoringPeriodId"`
	Status          leagueStatus   `json:"status"`
	Teams           []teamPayload  `json:"teams"`
	Schedule        []matchupEntry `json:"schedule"`
}

type leagueStatus struct {
	CurrentMatchupPeriod int `json:"currentMatchupPeriod"`
}

type teamPayload struct {
	ID       int    `json:"id"`
	Abbrev   string `json:"abbrev"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Nickname string `json:"nickname"`
}

type matchupEntry struct {
	ID              int          `json:"id"`
	MatchupPeriodID int          `json:"matchupPeriodId"`
	Home            *sidePayload `json:"home"`
	Away            *sidePayload `json:"away"`
}

type sidePayload struct {
	TeamID          int      `json:"teamId"`
	TotalPoints     float64  `json:"totalPoints"`
	TotalPointsLive *float64 `json:"totalPointsLive"`
}
