package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables that override config fields. Unset or empty variables
// leave the current value untouched.
const (
	EnvBotID      = "BOT_ID"
	EnvLeagueID   = "LEAGUE_ID"
	EnvLeagueYear = "LEAGUE_YEAR"
	EnvStartDate  = "START_DATE"
	EnvEndDate    = "END_DATE"
	EnvTimezone   = "TIMEZONE"
	EnvInitMsg    = "INIT_MSG"
	EnvESPNS2     = "ESPN_S2"
	EnvSWID       = "SWID"
	EnvLogLevel   = "LOG_LEVEL"
)

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := get(EnvBotID); ok {
		cfg.GroupMe.BotID = strings.TrimSpace(v)
	}
	if v, ok := get(EnvLeagueID); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid league id %q: %w", EnvLeagueID, v, err)
		}
		cfg.League.ID = id
	}
	if v, ok := get(EnvLeagueYear); ok {
		y, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid year %q: %w", EnvLeagueYear, v, err)
		}
		cfg.League.Year = y
	}
	if v, ok := get(EnvStartDate); ok {
		cfg.Schedule.StartDate = strings.TrimSpace(v)
	}
	if v, ok := get(EnvEndDate); ok {
		cfg.Schedule.EndDate = strings.TrimSpace(v)
	}
	if v, ok := get(EnvTimezone); ok {
		cfg.Schedule.Timezone = strings.TrimSpace(v)
	}
	if v, ok := get(EnvInitMsg); ok {
		cfg.InitMessage = v
	}
	if v, ok := get(EnvESPNS2); ok {
		cfg.League.ESPNS2 = strings.TrimSpace(v)
	}
	if v, ok := get(EnvSWID); ok {
		cfg.League.SWID = strings.TrimSpace(v)
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.Logging.Level = strings.TrimSpace(v)
	}
	return nil
}
