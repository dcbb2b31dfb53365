package app

import (
	"strings"

	"ffbot/internal/config"
	"ffbot/internal/league/espn"
	"ffbot/internal/notifier"
	"ffbot/internal/task/engine"
	"ffbot/internal/task/scheduler"
	logx "ffbot/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapNotifierConfig(cfg *config.Config) notifier.Config {
	return notifier.Config{
		BotID:       strings.TrimSpace(cfg.GroupMe.BotID),
		BaseURL:     strings.TrimSpace(cfg.GroupMe.BaseURL),
		RatePerSec:  cfg.GroupMe.Rate(),
		Timeout:     cfg.GroupMe.PostTimeout(),
		HistorySize: cfg.GroupMe.HistorySize,
	}
}

func mapESPNConfig(cfg *config.Config) espn.Config {
	return espn.Config{
		BaseURL:  strings.TrimSpace(cfg.League.BaseURL),
		LeagueID: cfg.League.ID,
		Year:     cfg.League.Year,
		ESPNS2:   cfg.League.ESPNS2,
		SWID:     cfg.League.SWID,
	}
}

func mapSchedulerConfig(cfg *config.Config) scheduler.Config {
	grace := cfg.Schedule.Grace()
	return scheduler.Config{
		Timezone:     strings.TrimSpace(cfg.Schedule.Timezone),
		StartDate:    strings.TrimSpace(cfg.Schedule.StartDate),
		EndDate:      strings.TrimSpace(cfg.Schedule.EndDate),
		MisfireGrace: &grace,
	}
}

// mapTaskEngineConfig builds the engine config. Stale-queue dropping follows the
// misfire grace unless task_engine.max_queue_delay says otherwise. A zero grace
// still leaves the scheduler's FireSlack, since engine 0 would mean never drop.
func mapTaskEngineConfig(cfg *config.Config) (engine.Config, error) {
	out := engine.Config{
		Enabled:       true,
		MaxQueueDelay: max(cfg.Schedule.Grace(), scheduler.FireSlack),
	}
	te := cfg.TaskEngine
	if te == nil {
		return out, nil
	}
	out.QueueSize = te.QueueSize
	out.HistorySize = te.HistorySize

	d, err := config.ParseDurationField("task_engine.default_timeout", te.DefaultTimeout)
	if err != nil {
		return engine.Config{}, err
	}
	out.DefaultTimeout = d
	if strings.TrimSpace(te.MaxQueueDelay) != "" {
		d, err := config.ParseDurationField("task_engine.max_queue_delay", te.MaxQueueDelay)
		if err != nil {
			return engine.Config{}, err
		}
		out.MaxQueueDelay = d
	}
	return out, nil
}
