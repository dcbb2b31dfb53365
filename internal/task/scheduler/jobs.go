package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ffbot/internal/task/engine"
	logx "ffbot/pkg/logx"

	"github.com/robfig/cron/v3"
)

// AddSchedule registers job under name using any form ParseSchedule accepts.
// An existing trigger with the same name is replaced.
func (s *Service) AddSchedule(name, schedule string, timeout time.Duration, job Job) (string, error) {
	ps, err := ParseSchedule(schedule)
	if err != nil {
		return "", err
	}
	if ps.Kind == SpecInterval {
		return s.register(name, "@every "+ps.Every.String(), timeout, job)
	}
	return s.register(name, ps.Cron, timeout, job)
}

// AddCron registers job under name with a cron expression.
func (s *Service) AddCron(name, spec string, timeout time.Duration, job Job) (string, error) {
	if _, err := s.parser.Parse(spec); err != nil {
		return "", fmt.Errorf("invalid cron %q: %w", spec, err)
	}
	return s.register(name, spec, timeout, job)
}

// AddWeekly registers job every weekday at HH:MM in the scheduler timezone.
func (s *Service) AddWeekly(name string, weekday time.Weekday, at string, timeout time.Duration, job Job) (string, error) {
	h, m, err := parseHHMM(at)
	if err != nil {
		return "", err
	}
	return s.AddCron(name, fmt.Sprintf("%d %d * * %d", m, h, int(weekday)), timeout, job)
}

// Remove drops the trigger registered under name and reports whether one existed.
func (s *Service) Remove(name string) bool {
	s.mu.Lock()
	ok := s.dropLocked(strings.TrimSpace(name))
	s.mu.Unlock()
	if ok {
		s.log.Debug("schedule removed", logx.String("name", name))
	}
	return ok
}

// Names lists trigger names in registration order.
func (s *Service) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.triggers))
	for i, t := range s.triggers {
		names[i] = t.name
	}
	return names
}

func (s *Service) register(name, spec string, timeout time.Duration, job Job) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", errors.New("schedule name required")
	case job == nil:
		return "", errors.New("schedule job required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(name)
	t := &trigger{name: name, spec: spec, timeout: timeout, job: job}
	s.triggers = append(s.triggers, t)
	if s.c == nil {
		return name, nil
	}
	if err := s.scheduleLocked(t); err != nil {
		s.log.Error("schedule register failed", logx.String("name", name), logx.String("spec", spec), logx.Err(err))
		return name, err
	}
	if s.log.Enabled(logx.LevelDebug) {
		s.log.Debug("schedule registered",
			logx.String("name", name),
			logx.String("spec", spec),
			logx.String("next", s.upcomingLocked(s.c.Entry(t.entry).Schedule, 3)),
		)
	}
	return name, nil
}

func (s *Service) dropLocked(name string) bool {
	if name == "" {
		return false
	}
	for i, t := range s.triggers {
		if t.name != name {
			continue
		}
		if s.c != nil && t.entry != 0 {
			s.c.Remove(t.entry)
		}
		s.triggers = append(s.triggers[:i], s.triggers[i+1:]...)
		return true
	}
	return false
}

// scheduleLocked adds t to the running cron, bounded by the date window.
func (s *Service) scheduleLocked(t *trigger) error {
	base, err := s.parser.Parse(t.spec)
	if err != nil {
		return err
	}
	t.sched = windowSchedule{base: base, start: s.start, end: s.end}
	t.due = t.sched.Next(s.now().In(s.loc))
	t.entry = s.c.Schedule(t.sched, cron.FuncJob(func() { s.fire(t, s.now()) }))
	return nil
}

// fire is the cron callback. It judges lateness against the occurrence cron
// was waiting for, then advances due the way cron advances its entry.
// Occurrences observed past the misfire grace are counted and skipped.
func (s *Service) fire(t *trigger, now time.Time) {
	s.mu.Lock()
	grace, loc := s.graceLocked(), s.loc
	if loc != nil {
		now = now.In(loc)
	}
	due := t.due
	if t.sched != nil {
		t.due = t.sched.Next(now)
	}
	name, timeout, job := t.name, t.timeout, t.job
	s.mu.Unlock()

	if !onTime(due, now, grace) {
		s.misfires.Add(1)
		s.log.Warn("trigger missed its grace window, skipped",
			logx.String("schedule", name),
			logx.Time("due", due),
			logx.Time("observed", now),
			logx.Duration("grace", grace),
		)
		return
	}
	if s.sink == nil {
		return
	}
	if err := s.sink.Enqueue(engine.Task{Name: name, Timeout: timeout, Run: job}); err != nil && s.warns.allow(name, now) {
		s.log.Warn("trigger not enqueued", logx.String("schedule", name), logx.Err(err))
	}
}

func (s *Service) upcomingLocked(sched cron.Schedule, n int) string {
	if sched == nil {
		return ""
	}
	loc := s.loc
	if loc == nil {
		loc = time.Local
	}
	at := s.now().In(loc)
	out := make([]string, 0, n)
	for range n {
		if at = sched.Next(at); at.IsZero() {
			break
		}
		out = append(out, at.Format(time.DateTime))
	}
	return strings.Join(out, ", ")
}

const enqueueWarnEvery = 5 * time.Second

// warnThrottle limits enqueue-failure warnings per schedule.
type warnThrottle struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func (w *warnThrottle) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		w.last = make(map[string]time.Time)
	}
	if prev, ok := w.last[key]; ok && now.Sub(prev) < enqueueWarnEvery {
		return false
	}
	w.last[key] = now
	return true
}

func parseHHMM(raw string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	if hour, err = strconv.Atoi(hs); err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	if minute, err = strconv.Atoi(ms); err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour, minute, nil
}
