package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const dateLayout = "2006-01-02"

// windowSchedule clamps a base schedule to [start, end].
// A zero bound is open. Returning the zero time tells cron to never run again.
type windowSchedule struct {
	base  cron.Schedule
	start time.Time
	end   time.Time
}

func (w windowSchedule) Next(t time.Time) time.Time {
	if !w.start.IsZero() && t.Before(w.start) {
		// Next is strictly after t; step back so a fire exactly at start counts.
		t = w.start.Add(-time.Second)
	}
	n := w.base.Next(t)
	if n.IsZero() {
		return n
	}
	if !w.end.IsZero() && n.After(w.end) {
		return time.Time{}
	}
	return n
}

// ParseDate parses "YYYY-MM-DD" as midnight in loc. Empty input yields the zero time.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// FireSlack is how late an occurrence may be observed and still count as on
// time when the grace is zero. cron wakes slightly after the due instant.
const FireSlack = time.Second

// onTime reports whether an occurrence due at due and observed at now is no
// later than grace. A negative grace or an unknown due time always passes.
func onTime(due, now time.Time, grace time.Duration) bool {
	if grace < 0 || due.IsZero() {
		return true
	}
	return now.Sub(due) <= grace+FireSlack
}
