package scheduler

import (
	"context"
	"strings"
	"time"

	logx "ffbot/pkg/logx"

	"github.com/robfig/cron/v3"
)

func New(cfg Config, sink Enqueuer, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:    cfg,
		log:    log,
		sink:   sink,
		parser: specParser,
		now:    time.Now,
	}
}

// Apply swaps the config. Timezone or window changes rebuild cron with every
// trigger; a new grace is picked up by the next fire.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cfg
	s.cfg = cfg
	if s.c != nil && !sameClock(old, cfg) {
		s.rebuildLocked()
		s.log.Info("scheduler restarted", logx.String("tz", s.loc.String()), logx.Int("schedules", len(s.triggers)))
	}
}

func sameClock(a, b Config) bool {
	trim := strings.TrimSpace
	return trim(a.Timezone) == trim(b.Timezone) &&
		trim(a.StartDate) == trim(b.StartDate) &&
		trim(a.EndDate) == trim(b.EndDate)
}

// Start begins firing triggers. Starting a running scheduler does nothing.
func (s *Service) Start(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.rebuildLocked()
	s.log.Info("scheduler started",
		logx.String("tz", s.loc.String()),
		logx.String("start", formatBound(s.start)),
		logx.String("end", formatBound(s.end)),
		logx.Int("schedules", len(s.triggers)),
	)
}

// Stop halts cron and waits for a running trigger callback until ctx ends.
// Registered triggers are kept for the next Start.
func (s *Service) Stop(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	c := s.c
	s.c = nil
	for _, t := range s.triggers {
		t.entry = 0
	}
	s.mu.Unlock()
	if c == nil {
		return
	}

	began := time.Now()
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped", logx.Duration("took", time.Since(began)))
}

// rebuildLocked replaces the cron instance using the current timezone and
// window and registers every trigger on it. Callbacks still running on the
// old instance are not waited for, since fire takes s.mu.
func (s *Service) rebuildLocked() {
	if s.c != nil {
		s.c.Stop()
	}
	s.loc = s.locationLocked()
	s.start, s.end = s.windowLocked()

	logger := cronLogger{log: s.log}
	s.c = cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)
	for _, t := range s.triggers {
		t.entry = 0
		if err := s.scheduleLocked(t); err != nil {
			s.log.Error("schedule register failed", logx.String("name", t.name), logx.String("spec", t.spec), logx.Err(err))
		}
	}
	s.c.Start()
}

func (s *Service) locationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("unknown timezone, using Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

func (s *Service) windowLocked() (start, end time.Time) {
	var err error
	if start, err = ParseDate(s.cfg.StartDate, s.loc); err != nil {
		s.log.Warn("ignoring start date", logx.Err(err))
		start = time.Time{}
	}
	if end, err = ParseDate(s.cfg.EndDate, s.loc); err != nil {
		s.log.Warn("ignoring end date", logx.Err(err))
		end = time.Time{}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		s.log.Warn("end date is before start date, nothing will fire",
			logx.String("start", formatBound(start)),
			logx.String("end", formatBound(end)),
		)
	}
	return start, end
}

func (s *Service) graceLocked() time.Duration {
	if s.cfg.MisfireGrace == nil {
		return DefaultMisfireGrace
	}
	return *s.cfg.MisfireGrace
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
