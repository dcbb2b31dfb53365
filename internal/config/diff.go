package config

import (
	"reflect"
	"strings"

	logx "ffbot/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections and safe
// structured attrs for logging. Secrets (bot id, ESPN cookies) are never included.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 6)
	attrs := make([]logx.Field, 0, 16)

	og, ng := oldCfg.GroupMe, newCfg.GroupMe
	if og.BotID != ng.BotID ||
		strings.TrimSpace(og.BaseURL) != strings.TrimSpace(ng.BaseURL) ||
		!reflect.DeepEqual(og.RatePerSec, ng.RatePerSec) ||
		strings.TrimSpace(og.Timeout) != strings.TrimSpace(ng.Timeout) ||
		og.HistorySize != ng.HistorySize {
		changed = append(changed, "groupme")
		attrs = append(attrs,
			logx.Bool("groupme.bot_id_set", strings.TrimSpace(ng.BotID) != ""),
			logx.Bool("groupme.bot_id_changed", og.BotID != ng.BotID),
			logx.String("groupme.timeout", strings.TrimSpace(ng.Timeout)),
		)
		if ng.RatePerSec != nil {
			attrs = append(attrs, logx.Float64("groupme.rate_per_sec", *ng.RatePerSec))
		}
	}

	ol, nl := oldCfg.League, newCfg.League
	if ol.Provider != nl.Provider || ol.ID != nl.ID || ol.Year != nl.Year ||
		strings.TrimSpace(ol.BaseURL) != strings.TrimSpace(nl.BaseURL) ||
		ol.ESPNS2 != nl.ESPNS2 || ol.SWID != nl.SWID {
		changed = append(changed, "league")
		attrs = append(attrs,
			logx.String("league.provider", nl.Provider),
			logx.Int64("league.id", nl.ID),
			logx.Int("league.year", nl.Year),
			logx.Bool("league.cookies_set", nl.ESPNS2 != "" && nl.SWID != ""),
		)
	}

	osch, nsch := oldCfg.Schedule, newCfg.Schedule
	if osch.Timezone != nsch.Timezone || osch.StartDate != nsch.StartDate || osch.EndDate != nsch.EndDate ||
		osch.MisfireGrace != nsch.MisfireGrace {
		changed = append(changed, "schedule")
		attrs = append(attrs,
			logx.String("schedule.timezone", nsch.Timezone),
			logx.String("schedule.start_date", nsch.StartDate),
			logx.String("schedule.end_date", nsch.EndDate),
			logx.String("schedule.misfire_grace", nsch.MisfireGrace),
		)
	}
	if !reflect.DeepEqual(osch.Jobs, nsch.Jobs) {
		changed = append(changed, "jobs")
		attrs = append(attrs, logx.Int("schedule.jobs", len(nsch.Jobs)))
	}

	if oldCfg.InitMessage != newCfg.InitMessage {
		changed = append(changed, "init_message")
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	ot, nt := derefTaskEngine(oldCfg.TaskEngine), derefTaskEngine(newCfg.TaskEngine)
	if ot != nt {
		changed = append(changed, "task_engine")
		attrs = append(attrs,
			logx.Int("task_engine.queue_size", nt.QueueSize),
			logx.String("task_engine.default_timeout", nt.DefaultTimeout),
			logx.String("task_engine.max_queue_delay", nt.MaxQueueDelay),
		)
	}

	return changed, attrs
}

func derefTaskEngine(te *TaskEngineConfig) TaskEngineConfig {
	if te == nil {
		return TaskEngineConfig{}
	}
	return *te
}
