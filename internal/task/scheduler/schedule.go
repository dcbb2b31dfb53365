package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SpecKind tells cron expressions from fixed intervals.
type SpecKind int

const (
	SpecCron SpecKind = iota
	SpecInterval
)

// ParsedSpec is the result of ParseSchedule. Source is "cron", "duration" or "hhmm".
type ParsedSpec struct {
	Kind   SpecKind
	Cron   string
	Every  time.Duration
	Source string
}

// specParser accepts 5-field and 6-field (leading seconds) expressions and descriptors.
var specParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule accepts:
//   - cron expressions: "0 7 * * mon", "0 0 19 * * sun", "@weekly", "@every 1h"
//   - intervals: "55m", "2h30m", or HH:MM such as "01:30"
//
// The prefixes "cron:", "interval:" and "every:" force one interpretation.
func ParseSchedule(raw string) (ParsedSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ParsedSpec{}, errors.New("schedule required")
	}
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		switch strings.ToLower(prefix) {
		case "cron":
			return parseCron(strings.TrimSpace(rest))
		case "interval", "every":
			return parseInterval(rest)
		}
	}
	if strings.HasPrefix(s, "@") || strings.ContainsAny(s, " \t") {
		return parseCron(s)
	}
	ps, err := parseInterval(s)
	if err != nil {
		return ParsedSpec{}, fmt.Errorf("invalid schedule %q: want cron like \"0 7 * * mon\", HH:MM like \"02:30\" or a duration like \"55m\"", raw)
	}
	return ps, nil
}

func parseCron(expr string) (ParsedSpec, error) {
	if expr == "" {
		return ParsedSpec{}, errors.New("cron expression required")
	}
	if _, err := specParser.Parse(expr); err != nil {
		return ParsedSpec{}, fmt.Errorf("invalid cron %q: %w", expr, err)
	}
	return ParsedSpec{Kind: SpecCron, Cron: expr, Source: "cron"}, nil
}

func parseInterval(raw string) (ParsedSpec, error) {
	v := strings.TrimSpace(raw)
	ps := ParsedSpec{Kind: SpecInterval, Source: "duration"}

	if hs, ms, ok := strings.Cut(v, ":"); ok {
		h, herr := strconv.Atoi(hs)
		m, merr := strconv.Atoi(ms)
		if herr != nil || merr != nil || h < 0 || len(ms) != 2 || m > 59 {
			return ParsedSpec{}, fmt.Errorf("invalid interval %q, want HH:MM", v)
		}
		ps.Every = time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
		ps.Source = "hhmm"
	} else {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ParsedSpec{}, fmt.Errorf("invalid interval %q: %w", v, err)
		}
		ps.Every = d
	}
	if ps.Every <= 0 {
		return ParsedSpec{}, fmt.Errorf("interval %q must be positive", v)
	}
	return ps, nil
}
