// Package engine runs report jobs on a single worker goroutine.
//
// Triggers (cron, on-demand) enqueue Tasks; the worker executes them one at a
// time in enqueue order. Tasks that waited longer than MaxQueueDelay are
// dropped instead of run late.
package engine
