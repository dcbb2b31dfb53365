package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	logx "ffbot/pkg/logx"
)

func (s *Service) work(ctx context.Context, l *loop) {
	defer close(l.done)
	for {
		// stop wins over queued work
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case p := <-l.queue:
			s.busy.Store(true)
			s.exec(ctx, p)
			s.busy.Store(false)
		}
	}
}

func (s *Service) exec(ctx context.Context, p pending) {
	cfg := s.config()
	started := time.Now()
	item := HistoryItem{
		ID:         p.task.ID,
		Name:       p.task.Name,
		Started:    started,
		QueueDelay: max(started.Sub(p.queuedAt), 0),
	}
	log := s.log.With(logx.String("task", item.Name), logx.String("id", item.ID))

	if cfg.MaxQueueDelay > 0 && item.QueueDelay > cfg.MaxQueueDelay {
		s.droppedStale.Add(1)
		item.Error = ErrStale.Error()
		s.hist.add(item, cfg.HistorySize)
		log.Warn("task dropped: stale", logx.Duration("queue_delay", item.QueueDelay))
		return
	}

	log.Debug("task started", logx.Duration("queue_delay", item.QueueDelay))
	err := s.call(ctx, p, log)
	item.Duration = time.Since(started)
	if err != nil {
		item.Error = err.Error()
		log.Error("task failed", logx.Duration("took", item.Duration), logx.Err(err))
	} else {
		log.Info("task done", logx.Duration("took", item.Duration))
	}
	s.hist.add(item, cfg.HistorySize)
}

// call runs the task with its timeout and turns a panic into an error.
func (s *Service) call(ctx context.Context, p pending, log logx.Logger) (err error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			log.Error("task panic", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
	}()
	return p.task.Run(ctx)
}
