package config

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "ffbot/pkg/logx"

	"github.com/fsnotify/fsnotify"
)

const (
	reloadDebounce   = 250 * time.Millisecond
	reloadTimeout    = 5 * time.Second
	watchBackoffBase = 250 * time.Millisecond
	watchBackoffMax  = 5 * time.Second
)

const watchedOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove | fsnotify.Chmod

// Watch reloads the config file whenever it changes and publishes valid
// versions to subscribers. Invalid edits are logged and ignored. The watcher
// is recreated with backoff if fsnotify fails. Without a file Watch just
// waits for ctx.
func (m *ConfigManager) Watch(ctx context.Context) error {
	if m.path == "" {
		<-ctx.Done()
		return nil
	}

	dir, name := filepath.Dir(m.path), filepath.Base(m.path)
	d := newDebouncer(reloadDebounce, func() { m.reloadAndLog(ctx) })
	defer d.stop()

	backoff := watchBackoffBase
	for ctx.Err() == nil {
		err := m.watchOnce(ctx, dir, name, d)
		if ctx.Err() != nil {
			break
		}
		if err == nil {
			// the watcher ran before breaking, start over from the base delay
			backoff = watchBackoffBase
		}
		wait := jitter(backoff)
		backoff = min(backoff*2, watchBackoffMax)
		m.logger().Warn("config watcher restarting",
			logx.String("dir", dir),
			logx.Duration("backoff", wait),
			logx.Err(err),
		)
		if !sleepCtx(ctx, wait) {
			break
		}
	}
	return nil
}

// watchOnce runs one fsnotify watcher until it breaks or ctx ends. A non-nil
// error means the watcher could not be set up at all.
func (m *ConfigManager) watchOnce(ctx context.Context, dir, name string, d *debouncer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log := m.logger()
	log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", name))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// editors often replace the file, so match by basename
			if ev.Op&watchedOps != 0 && strings.EqualFold(filepath.Base(ev.Name), name) {
				d.trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn("config watch overflow, reloading", logx.Err(err))
				d.trigger()
				continue
			}
			if errors.Is(err, fsnotify.ErrClosed) {
				return nil
			}
			log.Warn("config watch error", logx.Err(err))
		}
	}
}

func (m *ConfigManager) reloadAndLog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, reloadTimeout)
	defer cancel()

	log := m.logger().With(logx.String("path", m.path))
	published, err := m.reload(rctx)
	switch {
	case err != nil:
		log.Warn("config reload rejected", logx.Err(err))
	case published:
		log.Debug("config published")
	default:
		log.Debug("config unchanged")
	}
}

// debouncer coalesces bursts of file events into one call.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	t     *time.Timer
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
	}
	d.t = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
	}
}

func jitter(d time.Duration) time.Duration {
	return d + rand.N(d/2+1)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
