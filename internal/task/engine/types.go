package engine

import (
	"context"
	"time"
)

// Config controls the engine. The zero QueueSize and HistorySize fall back to
// defaultQueueSize and defaultHistorySize.
type Config struct {
	Enabled        bool
	QueueSize      int
	DefaultTimeout time.Duration // used when Task.Timeout is 0; 0 = no timeout
	MaxQueueDelay  time.Duration // tasks queued longer are dropped; 0 = never
	HistorySize    int
}

// Task is one report job run.
type Task struct {
	ID      string // generated when empty
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// HistoryItem records the outcome of a task. Error is empty on success.
type HistoryItem struct {
	ID         string
	Name       string
	Started    time.Time
	QueueDelay time.Duration
	Duration   time.Duration
	Error      string
}

type Snapshot struct {
	Enabled  bool
	Running  bool
	QueueLen int
	QueueCap int
	InFlight bool

	DroppedQueueFull uint64
	DroppedStale     uint64

	DefaultTimeout time.Duration
	MaxQueueDelay  time.Duration

	History []HistoryItem
}
