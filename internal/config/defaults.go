package config

const (
	ProviderESPN    = "espn"
	ProviderFixture = "fixture"

	DefaultYear         = 2017
	DefaultStartDate    = "2017-09-05"
	DefaultEndDate      = "2017-12-26"
	DefaultTimezone     = "America/Chicago"
	DefaultMisfireGrace = "15m"
)

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		League: LeagueConfig{
			Provider: ProviderESPN,
			Year:     DefaultYear,
		},
		Schedule: ScheduleConfig{
			Timezone:     DefaultTimezone,
			StartDate:    DefaultStartDate,
			EndDate:      DefaultEndDate,
			MisfireGrace: DefaultMisfireGrace,
			Jobs:         DefaultJobs(),
		},
		Logging: LoggingConfig{
			Level:   "INFO",
			Console: true,
		},
	}
}

// DefaultJobs are the two weekly reports: close scores Monday morning and the
// short scoreboard Sunday evening.
func DefaultJobs() []JobConfig {
	return []JobConfig{
		{Name: "close_scores", Report: "get_close_scores", Weekday: "mon", At: "07:00"},
		{Name: "scoreboard", Report: "get_scoreboard_short", Weekday: "sun", At: "19:00"},
	}
}
