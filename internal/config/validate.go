package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ffbot/internal/task/scheduler"
)

// Validate rejects configs that would leave the bot unable to schedule.
// All problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error

	switch strings.ToLower(strings.TrimSpace(cfg.League.Provider)) {
	case "", ProviderESPN, ProviderFixture:
	default:
		errs = append(errs, fmt.Errorf("league.provider: unknown provider %q", cfg.League.Provider))
	}
	if cfg.League.ID < 0 {
		errs = append(errs, fmt.Errorf("league.id: must be >= 0"))
	}
	if cfg.League.Year < 0 {
		errs = append(errs, fmt.Errorf("league.year: must be >= 0"))
	}

	if r := cfg.GroupMe.RatePerSec; r != nil && *r < 0 {
		errs = append(errs, fmt.Errorf("groupme.rate_per_sec: must be >= 0"))
	}
	if _, err := ParseDurationField("groupme.timeout", cfg.GroupMe.Timeout); err != nil {
		errs = append(errs, err)
	}

	loc := time.Local
	if tz := strings.TrimSpace(cfg.Schedule.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
		} else {
			loc = l
		}
	}
	start, err := scheduler.ParseDate(cfg.Schedule.StartDate, loc)
	if err != nil {
		errs = append(errs, fmt.Errorf("schedule.start_date: %w", err))
	}
	end, err := scheduler.ParseDate(cfg.Schedule.EndDate, loc)
	if err != nil {
		errs = append(errs, fmt.Errorf("schedule.end_date: %w", err))
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs = append(errs, fmt.Errorf("schedule.end_date: %s is before start_date %s", cfg.Schedule.EndDate, cfg.Schedule.StartDate))
	}
	if _, err := ParseDurationField("schedule.misfire_grace", cfg.Schedule.MisfireGrace); err != nil {
		errs = append(errs, err)
	}

	seen := map[string]bool{}
	for i, j := range cfg.Schedule.Jobs {
		path := fmt.Sprintf("schedule.jobs[%d]", i)
		name := strings.TrimSpace(j.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%s.name: required", path))
		} else if seen[name] {
			errs = append(errs, fmt.Errorf("%s.name: duplicate %q", path, name))
		}
		seen[name] = true
		if strings.TrimSpace(j.Report) == "" {
			errs = append(errs, fmt.Errorf("%s.report: required", path))
		}
		if err := validateJobTiming(path, j); err != nil {
			errs = append(errs, err)
		}
		if _, err := ParseDurationField(path+".timeout", j.Timeout); err != nil {
			errs = append(errs, err)
		}
	}

	if te := cfg.TaskEngine; te != nil {
		if te.QueueSize < 0 {
			errs = append(errs, fmt.Errorf("task_engine.queue_size: must be >= 0"))
		}
		if _, err := ParseDurationField("task_engine.default_timeout", te.DefaultTimeout); err != nil {
			errs = append(errs, err)
		}
		if _, err := ParseDurationField("task_engine.max_queue_delay", te.MaxQueueDelay); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateJobTiming(path string, j JobConfig) error {
	hasSpec := strings.TrimSpace(j.Schedule) != ""
	hasWeekly := strings.TrimSpace(j.Weekday) != "" || strings.TrimSpace(j.At) != ""
	switch {
	case hasSpec && hasWeekly:
		return fmt.Errorf("%s: set either schedule or weekday+at, not both", path)
	case hasSpec:
		if _, err := scheduler.ParseSchedule(j.Schedule); err != nil {
			return fmt.Errorf("%s.schedule: %w", path, err)
		}
		return nil
	case hasWeekly:
		if _, err := ParseWeekday(j.Weekday); err != nil {
			return fmt.Errorf("%s.weekday: %w", path, err)
		}
		if _, err := time.Parse("15:04", strings.TrimSpace(j.At)); err != nil {
			return fmt.Errorf("%s.at: invalid time %q, expected HH:MM", path, j.At)
		}
		return nil
	default:
		return fmt.Errorf("%s: schedule or weekday+at required", path)
	}
}
