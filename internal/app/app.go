package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ffbot/internal/config"
	"ffbot/internal/dispatch"
	"ffbot/internal/notifier"
	"ffbot/internal/report"
	"ffbot/internal/task/engine"
	"ffbot/internal/task/scheduler"
	logx "ffbot/pkg/logx"

	"golang.org/x/sync/errgroup"
)

// Options controls how the app is built.
type Options struct {
	// ConfigPath is optional; empty means defaults + environment.
	ConfigPath string

	// DryRun prints messages to Out instead of posting them.
	DryRun bool
	Out    io.Writer
}

type App struct {
	cfgm *config.ConfigManager

	log  logx.Logger
	logs *logx.Service

	league *leagueSource
	notif  *notifier.Service
	disp   *dispatch.Dispatcher

	engine *engine.Service
	sched  *scheduler.Service

	cancel context.CancelFunc
	eg     *errgroup.Group
}

func NewApp(opts Options) (*App, error) {
	cfgm := config.NewConfigManager(opts.ConfigPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogConfig(cfg))

	engCfg, err := mapTaskEngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	engineSvc := engine.New(engCfg, log.With(logx.String("comp", "taskengine")))
	schedSvc := scheduler.New(mapSchedulerConfig(cfg), engineSvc, log.With(logx.String("comp", "scheduler")))

	src := newLeagueSource(cfg)

	var (
		notif  *notifier.Service
		sender dispatch.Sender
	)
	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		sender = &dispatch.WriterSender{W: out}
	} else {
		notif = notifier.New(mapNotifierConfig(cfg), log.With(logx.String("comp", "notifier")))
		sender = notif
	}

	disp := dispatch.New(report.NewBuilder(src), sender, cfg.InitMessage, log.With(logx.String("comp", "dispatch")))

	log = log.With(logx.String("comp", "app"))
	log.Debug("app built",
		logx.String("league", src.Name()),
		logx.Bool("dry_run", opts.DryRun),
		logx.String("config", opts.ConfigPath),
	)

	return &App{
		cfgm:   cfgm,
		log:    log,
		logs:   logSvc,
		league: src,
		notif:  notif,
		disp:   disp,
		engine: engineSvc,
		sched:  schedSvc,
	}, nil
}

// RunOnce dispatches a single token immediately, bypassing the scheduler.
func (a *App) RunOnce(ctx context.Context, token string) error {
	return a.disp.Run(ctx, token)
}

// Start posts the init message, registers the scheduled jobs and starts
// triggering. A failed init post is logged and startup continues.
func (a *App) Start(ctx context.Context) error {
	cfg := a.cfgm.Get()

	if err := a.disp.Run(ctx, dispatch.TokenInit); err != nil {
		a.log.Error("init message not sent", logx.Err(err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.engine.Start(runCtx)
	if err := a.syncJobs(cfg); err != nil {
		cancel()
		return err
	}
	a.sched.Start(runCtx)

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, c *config.Config) error {
		_, err := mapTaskEngineConfig(c)
		return err
	})

	eg, egCtx := errgroup.WithContext(runCtx)
	a.eg = eg
	sub := a.cfgm.Subscribe(4)
	eg.Go(func() error {
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(egCtx, sub)
		return nil
	})
	eg.Go(func() error {
		return a.cfgm.Watch(egCtx)
	})

	a.log.Info("app started",
		logx.String("league", a.league.Name()),
		logx.Int("jobs", len(cfg.Schedule.Jobs)),
	)
	return nil
}

// syncJobs makes the scheduler's jobs match cfg: removed jobs are unscheduled,
// the rest are upserted.
func (a *App) syncJobs(cfg *config.Config) error {
	want := make(map[string]bool, len(cfg.Schedule.Jobs))
	for _, j := range cfg.Schedule.Jobs {
		want[strings.TrimSpace(j.Name)] = true
	}
	for _, name := range a.sched.Names() {
		if !want[name] {
			a.sched.Remove(name)
		}
	}

	var errs []error
	for _, j := range cfg.Schedule.Jobs {
		if err := a.addJob(j); err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", j.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) addJob(j config.JobConfig) error {
	token := strings.TrimSpace(j.Report)
	if !dispatch.Known(token) {
		a.log.Warn("job uses unknown report; it will post the fallback message",
			logx.String("job", j.Name), logx.String("report", token))
	}
	run := func(ctx context.Context) error { return a.disp.Run(ctx, token) }

	if strings.TrimSpace(j.Schedule) != "" {
		_, err := a.sched.AddSchedule(j.Name, j.Schedule, j.JobTimeout(), run)
		return err
	}
	day, err := config.ParseWeekday(j.Weekday)
	if err != nil {
		return err
	}
	_, err = a.sched.AddWeekly(j.Name, day, j.At, j.JobTimeout(), run)
	return err
}

func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config) {
	lastApplied := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case newCfg, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: keep only the latest config.
		drain:
			for {
				select {
				case newer := <-sub:
					if newer != nil {
						newCfg = newer
					}
				default:
					break drain
				}
			}
			a.applyConfig(lastApplied, newCfg)
			lastApplied = newCfg
		}
	}
}

func (a *App) applyConfig(oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	a.logs.Apply(mapLogConfig(newCfg))
	if a.notif != nil {
		a.notif.Apply(mapNotifierConfig(newCfg))
	}
	a.league.apply(newCfg)
	a.disp.SetInitMessage(newCfg.InitMessage)

	if engCfg, err := mapTaskEngineConfig(newCfg); err != nil {
		a.log.Warn("invalid task_engine config; keeping previous", logx.Err(err))
	} else {
		a.engine.Apply(engCfg)
	}
	a.sched.Apply(mapSchedulerConfig(newCfg))
	if err := a.syncJobs(newCfg); err != nil {
		a.log.Warn("some jobs could not be scheduled", logx.Err(err))
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

// Status is a diagnostics view of the running app.
type Status struct {
	League    string
	Engine    engine.Snapshot
	Scheduler scheduler.Snapshot
	Sent      []notifier.HistoryItem
}

func (a *App) Status() Status {
	st := Status{
		League:    a.league.Name(),
		Engine:    a.engine.Snapshot(),
		Scheduler: a.sched.Snapshot(),
	}
	if a.notif != nil {
		st.Sent = a.notif.History()
	}
	return st
}

// Stop shuts down triggering first, then execution, then background loops.
// Each step is bounded so one component can't stall the whole stop.
func (a *App) Stop(ctx context.Context, reason StopReason) error {
	a.log.Info("stopping", logx.String("reason", string(reason)))

	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
			a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Err(stepCtx.Err()),
				logx.Duration("elapsed", time.Since(start)),
			)
		}
	}

	step("scheduler", 2*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	step("taskengine", 5*time.Second, func(c context.Context) error { a.engine.Stop(c); return nil })
	if a.cancel != nil {
		a.cancel()
	}
	if a.eg != nil {
		step("background", 2*time.Second, func(context.Context) error { return a.eg.Wait() })
	}

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}
