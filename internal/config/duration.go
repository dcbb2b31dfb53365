package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationField parses a non-negative Go duration string. Empty means 0.
// path names the field in error messages.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// durationOr parses an already validated field, falling back to def when empty or invalid.
func durationOr(raw string, def time.Duration) time.Duration {
	d, err := ParseDurationField("", raw)
	if err != nil || strings.TrimSpace(raw) == "" {
		return def
	}
	return d
}

// Grace returns the misfire grace window, 15m when unset.
func (s ScheduleConfig) Grace() time.Duration { return durationOr(s.MisfireGrace, 15*time.Minute) }

// PostTimeout returns the per-post timeout; 0 means the HTTP client default.
func (g GroupMeConfig) PostTimeout() time.Duration { return durationOr(g.Timeout, 0) }

// Rate returns the outbound post rate; 1/s when unset.
func (g GroupMeConfig) Rate() float64 {
	if g.RatePerSec == nil {
		return 1
	}
	return *g.RatePerSec
}

// JobTimeout returns the job's timeout; 0 means the engine default.
func (j JobConfig) JobTimeout() time.Duration { return durationOr(j.Timeout, 0) }
