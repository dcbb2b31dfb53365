package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ffbot/internal/task/engine"
	logx "ffbot/pkg/logx"

	"github.com/robfig/cron/v3"
)

// DefaultMisfireGrace applies when Config.MisfireGrace is nil.
const DefaultMisfireGrace = 15 * time.Minute

type Config struct {
	Timezone string // IANA name; empty or unknown means Local

	// Trigger window, "YYYY-MM-DD" at midnight in Timezone. Empty leaves that side open.
	StartDate string
	EndDate   string

	// MisfireGrace is how late a trigger may run after its due time. nil means
	// DefaultMisfireGrace, 0 allows only FireSlack, negative turns the check off.
	MisfireGrace *time.Duration
}

// Job runs on the engine worker when its trigger fires.
type Job func(ctx context.Context) error

// Enqueuer receives fired triggers. *engine.Service implements it.
type Enqueuer interface {
	Enqueue(t engine.Task) error
}

// trigger is one registered schedule.
type trigger struct {
	name    string
	spec    string // normalized cron spec, intervals as "@every <d>"
	timeout time.Duration
	job     Job
	entry   cron.EntryID // 0 while cron is not running

	// sched and due mirror the cron entry: due is the occurrence the next
	// callback belongs to. Guarded by Service.mu.
	sched cron.Schedule
	due   time.Time
}

// Service fires registered triggers inside the date window and hands them to
// the engine.
type Service struct {
	log    logx.Logger
	sink   Enqueuer
	parser cron.Parser
	now    func() time.Time

	mu       sync.Mutex
	cfg      Config
	c        *cron.Cron
	loc      *time.Location
	start    time.Time
	end      time.Time
	triggers []*trigger

	misfires atomic.Uint64
	warns    warnThrottle
}

type ScheduleInfo struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Next    time.Time
	Prev    time.Time
}

type Snapshot struct {
	Running      bool
	Timezone     string
	Start        time.Time
	End          time.Time
	MisfireGrace time.Duration
	Misfires     uint64
	Schedules    []ScheduleInfo
}
