package espn

import "time"

const (
	defaultBaseURL     = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 512
)
