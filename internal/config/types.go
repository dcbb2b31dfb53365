package config

// Config is the full bot configuration.
//
// Load order: Default(), then the optional config file (JSON or YAML, unknown
// fields rejected), then environment overrides (see env.go).
type Config struct {
	GroupMe  GroupMeConfig  `json:"groupme"`
	League   LeagueConfig   `json:"league"`
	Schedule ScheduleConfig `json:"schedule"`

	// InitMessage is posted once at startup. Empty posts nothing.
	InitMessage string `json:"init_message,omitempty"`

	Logging LoggingConfig `json:"logging"`

	// TaskEngine controls job execution. If omitted, defaults apply.
	TaskEngine *TaskEngineConfig `json:"task_engine,omitempty"`
}

// GroupMeConfig configures the webhook target.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type GroupMeConfig struct {
	BotID   string `json:"bot_id"`
	BaseURL string `json:"base_url,omitempty"`

	// RatePerSec limits outbound posts. Omitted means 1; 0 disables the limit.
	RatePerSec *float64 `json:"rate_per_sec,omitempty"`

	// Timeout bounds one post. Empty or "0s" uses the HTTP client default.
	Timeout string `json:"timeout,omitempty"`

	HistorySize int `json:"history_size,omitempty"`
}

// LeagueConfig selects and configures the scoreboard source.
type LeagueConfig struct {
	// Provider is "espn" (default) or "fixture".
	Provider string `json:"provider,omitempty"`

	ID      int64  `json:"id"`
	Year    int    `json:"year"`
	BaseURL string `json:"base_url,omitempty"`

	// Cookies for private leagues.
	ESPNS2 string `json:"espn_s2,omitempty"`
	SWID   string `json:"swid,omitempty"`
}

// ScheduleConfig controls the trigger window and the scheduled jobs.
type ScheduleConfig struct {
	Timezone string `json:"timezone"`

	// StartDate and EndDate are "YYYY-MM-DD", midnight in Timezone.
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// MisfireGrace is a Go duration string. Triggers observed later than this
	// after their due time are skipped.
	MisfireGrace string `json:"misfire_grace,omitempty"`

	Jobs []JobConfig `json:"jobs"`
}

// JobConfig is one scheduled report.
//
// Either Schedule (cron or interval, see scheduler.ParseSchedule) or
// Weekday + At ("mon", "19:00") must be set.
type JobConfig struct {
	Name   string `json:"name"`
	Report string `json:"report"`

	Schedule string `json:"schedule,omitempty"`
	Weekday  string `json:"weekday,omitempty"`
	At       string `json:"at,omitempty"`

	Timeout string `json:"timeout,omitempty"`
}

// TaskEngineConfig controls the task execution engine.
//
// Defaults (when fields are omitted/zero):
//   - queue_size: 16
//   - default_timeout: "0s" (disabled)
//   - max_queue_delay: schedule.misfire_grace
//   - history_size: 100
type TaskEngineConfig struct {
	QueueSize      int    `json:"queue_size,omitempty"`
	DefaultTimeout string `json:"default_timeout,omitempty"`
	MaxQueueDelay  string `json:"max_queue_delay,omitempty"`
	HistorySize    int    `json:"history_size,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}
