package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	logx "ffbot/pkg/logx"
)

const (
	defaultQueueSize   = 16
	defaultHistorySize = 100
	queueFullWarnEvery = 5 * time.Second
)

// Service is a single-worker task runner.
type Service struct {
	log logx.Logger

	mu  sync.Mutex
	cfg Config
	cur *loop // nil when not started

	seq          atomic.Uint64
	busy         atomic.Bool
	droppedFull  atomic.Uint64
	droppedStale atomic.Uint64
	lastFullWarn atomic.Int64

	hist history
}

// loop is the queue and lifecycle of one Start/Stop cycle.
type loop struct {
	queue chan pending
	stop  chan struct{}
	done  chan struct{}
}

type pending struct {
	task     Task
	queuedAt time.Time
	timeout  time.Duration
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: normalize(cfg), log: log}
}

func normalize(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	cfg.DefaultTimeout = max(cfg.DefaultTimeout, 0)
	cfg.MaxQueueDelay = max(cfg.MaxQueueDelay, 0)
	return cfg
}

func (s *Service) config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Service) Enabled() bool { return s.config().Enabled }

// Apply swaps timeouts, stale delay and history size. A new QueueSize is used
// from the next Start.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.cfg = normalize(cfg)
	s.mu.Unlock()
}

// Start launches the worker. Calling it on a disabled or running engine does nothing.
func (s *Service) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if !s.cfg.Enabled || s.cur != nil {
		s.mu.Unlock()
		return
	}
	l := &loop{
		queue: make(chan pending, s.cfg.QueueSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	s.cur = l
	s.mu.Unlock()

	go s.work(ctx, l)
	s.log.Info("task engine started", logx.Int("queue", cap(l.queue)))
}

// Stop closes intake, drops tasks still queued and waits for the running one
// until ctx ends.
func (s *Service) Stop(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	l := s.cur
	s.cur = nil
	s.mu.Unlock()
	if l == nil {
		return
	}
	close(l.stop)

	select {
	case <-l.done:
		s.log.Info("task engine stopped", logx.Int("discarded", len(l.queue)))
	case <-ctx.Done():
		s.log.Warn("task engine stop timed out", logx.Err(ctx.Err()))
	}
}

// Enqueue hands t to the worker without blocking. It fails with ErrQueueFull
// when the queue has no room; the task is not retried.
func (s *Service) Enqueue(t Task) error {
	if t.Run == nil {
		return errors.New("task has no Run func")
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return errors.New("task name is required")
	}
	now := time.Now()
	if strings.TrimSpace(t.ID) == "" {
		t.ID = fmt.Sprintf("tsk-%x-%x", now.UnixNano(), s.seq.Add(1))
	}

	s.mu.Lock()
	cfg, l := s.cfg, s.cur
	s.mu.Unlock()
	switch {
	case !cfg.Enabled:
		return ErrDisabled
	case l == nil:
		return ErrStopped
	}

	p := pending{task: t, queuedAt: now, timeout: t.Timeout}
	if p.timeout <= 0 {
		p.timeout = cfg.DefaultTimeout
	}
	select {
	case l.queue <- p:
		return nil
	default:
	}

	s.droppedFull.Add(1)
	if s.warnDue(now) {
		s.log.Warn("task dropped: queue full",
			logx.String("task", t.Name),
			logx.String("id", t.ID),
			logx.Int("queue_cap", cap(l.queue)),
		)
	}
	return ErrQueueFull
}

// warnDue rate-limits the queue-full warning.
func (s *Service) warnDue(now time.Time) bool {
	prev := s.lastFullWarn.Load()
	if prev != 0 && now.UnixNano()-prev < int64(queueFullWarnEvery) {
		return false
	}
	return s.lastFullWarn.CompareAndSwap(prev, now.UnixNano())
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	cfg, l := s.cfg, s.cur
	s.mu.Unlock()

	snap := Snapshot{
		Enabled:          cfg.Enabled,
		Running:          l != nil,
		InFlight:         s.busy.Load(),
		DroppedQueueFull: s.droppedFull.Load(),
		DroppedStale:     s.droppedStale.Load(),
		DefaultTimeout:   cfg.DefaultTimeout,
		MaxQueueDelay:    cfg.MaxQueueDelay,
		History:          s.hist.list(),
	}
	if l != nil {
		snap.QueueLen, snap.QueueCap = len(l.queue), cap(l.queue)
	}
	return snap
}
