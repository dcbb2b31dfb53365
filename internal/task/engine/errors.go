package engine

import "errors"

var (
	ErrDisabled  = errors.New("task engine disabled")
	ErrStopped   = errors.New("task engine not running")
	ErrQueueFull = errors.New("task queue full")
	ErrStale     = errors.New("task waited longer than max queue delay")
)
