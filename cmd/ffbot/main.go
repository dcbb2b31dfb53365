package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ffbot/internal/app"

	"github.com/coreos/go-systemd/v22/daemon"
)

func main() {
	var (
		cfgPath string
		runTok  string
		dryRun  bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to config json/yaml (optional; env vars override)")
	flag.StringVar(&runTok, "run", "", "dispatch one report token and exit (init, get_scoreboard, get_scoreboard_short, get_close_scores, get_random_phrase)")
	flag.BoolVar(&dryRun, "dry-run", false, "print messages to stdout instead of posting")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(app.Options{ConfigPath: cfgPath, DryRun: dryRun, Out: os.Stdout})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	if runTok != "" {
		err := a.RunOnce(ctx, runTok)
		_ = a.Stop(context.Background(), app.StopAppStop)
		if err != nil {
			fmt.Fprintln(os.Stderr, "fatal run:", err)
			os.Exit(1)
		}
		return
	}

	if err := a.Start(ctx); err != nil {
		_ = a.Stop(context.Background(), app.StopFatalError)
		fmt.Fprintln(os.Stderr, "fatal start:", err)
		os.Exit(1)
	}
	// Not running under systemd is fine; SdNotify is a no-op then.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = a.Stop(stopCtx, app.StopSignal)
}
