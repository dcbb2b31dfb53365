package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func noEnv(string) (string, bool) { return "", false }

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(Default()): %v", err)
	}
	if cfg.League.Year != 2017 || cfg.Schedule.Timezone != "America/Chicago" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Schedule.StartDate != "2017-09-05" || cfg.Schedule.EndDate != "2017-12-26" {
		t.Fatalf("unexpected window: %+v", cfg.Schedule)
	}
	if len(cfg.Schedule.Jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(cfg.Schedule.Jobs))
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Parallel()
	env := map[string]string{
		EnvBotID:      "abc123",
		EnvLeagueID:   "1234",
		EnvLeagueYear: "2018",
		EnvTimezone:   "UTC",
		EnvInitMsg:    "Hi",
		EnvStartDate:  "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.GroupMe.BotID != "abc123" || cfg.League.ID != 1234 || cfg.League.Year != 2018 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Schedule.Timezone != "UTC" || cfg.InitMessage != "Hi" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Schedule.StartDate != DefaultStartDate {
		t.Fatalf("empty env should keep default, got %q", cfg.Schedule.StartDate)
	}
}

func TestApplyEnvMissingKeepsDefaults(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if err := applyEnv(cfg, noEnv); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.League.Year != DefaultYear || cfg.GroupMe.BotID != "" || cfg.InitMessage != "" {
		t.Fatalf("defaults changed: %+v", cfg)
	}
}

func TestApplyEnvMalformed(t *testing.T) {
	t.Parallel()
	for _, key := range []string{EnvLeagueID, EnvLeagueYear} {
		lookup := func(k string) (string, bool) {
			if k == key {
				return "twenty", true
			}
			return "", false
		}
		if err := applyEnv(Default(), lookup); err == nil || !strings.Contains(err.Error(), key) {
			t.Fatalf("%s: err = %v, want malformed error", key, err)
		}
	}
}

func TestParseYAMLFile(t *testing.T) {
	p := writeFile(t, "ffbot.yaml", `
groupme:
  bot_id: from-file
  rate_per_sec: 0
league:
  provider: fixture
  id: 42
schedule:
  timezone: UTC
  start_date: "2018-09-04"
  end_date: "2018-12-25"
  jobs:
    - name: sunday
      report: get_scoreboard
      schedule: "0 20 * * sun"
logging:
  level: debug
`)
	t.Setenv(EnvBotID, "")
	t.Setenv(EnvLeagueYear, "2018")

	cfg, err := NewConfigManager(p).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GroupMe.BotID != "from-file" || cfg.GroupMe.RatePerSec == nil || *cfg.GroupMe.RatePerSec != 0 {
		t.Fatalf("groupme = %+v", cfg.GroupMe)
	}
	if cfg.League.Provider != ProviderFixture || cfg.League.ID != 42 || cfg.League.Year != 2018 {
		t.Fatalf("league = %+v", cfg.League)
	}
	if len(cfg.Schedule.Jobs) != 1 || cfg.Schedule.Jobs[0].Name != "sunday" {
		t.Fatalf("jobs = %+v", cfg.Schedule.Jobs)
	}
	// Absent fields keep defaults.
	if cfg.Schedule.MisfireGrace != DefaultMisfireGrace || !cfg.Logging.Console {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	p := writeFile(t, "ffbot.json", `{"groupme": {"bot_id": "from-file"}}`)
	t.Setenv(EnvBotID, "from-env")

	cfg, err := NewConfigManager(p).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.GroupMe.BotID != "from-env" {
		t.Fatalf("bot id = %q, want from-env", cfg.GroupMe.BotID)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "ffbot.json", `{"groupme": {"bot_id": "x", "token": "y"}}`)
	if _, err := NewConfigManager(p).Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "ffbot.json", `{} {}`)
	if _, err := NewConfigManager(p).Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "timezone", mutate: func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, want: "schedule.timezone"},
		{name: "start date", mutate: func(c *Config) { c.Schedule.StartDate = "09/05/2017" }, want: "schedule.start_date"},
		{name: "end before start", mutate: func(c *Config) { c.Schedule.EndDate = "2017-01-01" }, want: "before start_date"},
		{name: "grace", mutate: func(c *Config) { c.Schedule.MisfireGrace = "soon" }, want: "schedule.misfire_grace"},
		{name: "provider", mutate: func(c *Config) { c.League.Provider = "yahoo" }, want: "league.provider"},
		{name: "weekday", mutate: func(c *Config) { c.Schedule.Jobs[0].Weekday = "funday" }, want: "weekday"},
		{name: "at", mutate: func(c *Config) { c.Schedule.Jobs[0].At = "25:00" }, want: ".at"},
		{name: "both timings", mutate: func(c *Config) { c.Schedule.Jobs[0].Schedule = "0 7 * * mon" }, want: "not both"},
		{name: "no timing", mutate: func(c *Config) { c.Schedule.Jobs[0].Weekday, c.Schedule.Jobs[0].At = "", "" }, want: "required"},
		{name: "bad schedule", mutate: func(c *Config) { c.Schedule.Jobs[0] = JobConfig{Name: "x", Report: "init", Schedule: "whenever"} }, want: ".schedule"},
		{name: "duplicate job", mutate: func(c *Config) { c.Schedule.Jobs[1].Name = c.Schedule.Jobs[0].Name }, want: "duplicate"},
		{name: "engine timeout", mutate: func(c *Config) { c.TaskEngine = &TaskEngineConfig{DefaultTimeout: "-1s"} }, want: "task_engine.default_timeout"},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		err := Validate(cfg)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: err = %v, want containing %q", tt.name, err, tt.want)
		}
	}
}

func TestValidateNil(t *testing.T) {
	t.Parallel()
	if err := Validate(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()
	tests := map[string]time.Weekday{"mon": time.Monday, "Sunday": time.Sunday, " SAT ": time.Saturday}
	for raw, want := range tests {
		got, err := ParseWeekday(raw)
		if err != nil || got != want {
			t.Fatalf("ParseWeekday(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	oldCfg := Default()
	newCfg := Default()
	newCfg.GroupMe.BotID = "secret"
	newCfg.Schedule.Timezone = "UTC"
	newCfg.Schedule.Jobs = newCfg.Schedule.Jobs[:1]

	changed, attrs := SummarizeConfigChange(oldCfg, newCfg)
	want := []string{"groupme", "schedule", "jobs"}
	if strings.Join(changed, ",") != strings.Join(want, ",") {
		t.Fatalf("changed = %v, want %v", changed, want)
	}
	if len(attrs) == 0 {
		t.Fatal("expected attrs")
	}

	if changed, _ := SummarizeConfigChange(oldCfg, Default()); len(changed) != 0 {
		t.Fatalf("identical configs reported changes: %v", changed)
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty = %v, %v", d, err)
	}
	if d, err := ParseDurationField("x", "15m"); err != nil || d != 15*time.Minute {
		t.Fatalf("15m = %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Fatal("expected error for negative duration")
	}
	if _, err := ParseDurationField("schedule.misfire_grace", "abc"); err == nil || !strings.HasPrefix(err.Error(), "schedule.misfire_grace") {
		t.Fatalf("err = %v, want path-prefixed error", err)
	}
}

func TestDurationAccessors(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if got := cfg.Schedule.Grace(); got != 15*time.Minute {
		t.Fatalf("Grace = %v, want 15m", got)
	}
	cfg.Schedule.MisfireGrace = "1m"
	if got := cfg.Schedule.Grace(); got != time.Minute {
		t.Fatalf("Grace = %v, want 1m", got)
	}
	if got := cfg.GroupMe.Rate(); got != 1 {
		t.Fatalf("Rate = %v, want 1", got)
	}
	zero := 0.0
	cfg.GroupMe.RatePerSec = &zero
	if got := cfg.GroupMe.Rate(); got != 0 {
		t.Fatalf("Rate = %v, want 0", got)
	}
	if got := cfg.GroupMe.PostTimeout(); got != 0 {
		t.Fatalf("PostTimeout = %v, want 0", got)
	}
	if got := (JobConfig{Timeout: "30s"}).JobTimeout(); got != 30*time.Second {
		t.Fatalf("JobTimeout = %v", got)
	}
}

func TestToJSONYAMLDates(t *testing.T) {
	t.Parallel()
	jb, err := toJSON("c.yml", []byte("schedule:\n  start_date: 2019-09-03\n  misfire_grace: 5m\n"))
	if err != nil {
		t.Fatalf("toJSON: %v", err)
	}
	cfg := Default()
	if err := json.Unmarshal(jb, cfg); err != nil {
		t.Fatalf("unmarshal %s: %v", jb, err)
	}
	if cfg.Schedule.StartDate != "2019-09-03" || cfg.Schedule.MisfireGrace != "5m" {
		t.Fatalf("schedule = %+v", cfg.Schedule)
	}

	empty, err := toJSON("c.yaml", nil)
	if err != nil || string(empty) != "{}" {
		t.Fatalf("empty yaml = %q, %v", empty, err)
	}
	raw := []byte(`{"a":1}`)
	if got, _ := toJSON("c.json", raw); string(got) != string(raw) {
		t.Fatalf("json passthrough = %q", got)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBotID, EnvLeagueID, EnvLeagueYear, EnvStartDate, EnvEndDate, EnvTimezone, EnvInitMsg, EnvESPNS2, EnvSWID, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestReloadPublishesChanges(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "ffbot.json", `{"init_message": "one"}`)
	m := NewConfigManager(p)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)

	if ok, err := m.reload(context.Background()); err != nil || ok {
		t.Fatalf("unchanged reload = %v, %v", ok, err)
	}

	if err := os.WriteFile(p, []byte(`{"init_message": "two"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := m.reload(context.Background()); err != nil || !ok {
		t.Fatalf("changed reload = %v, %v", ok, err)
	}
	select {
	case got := <-sub:
		if got.InitMessage != "two" {
			t.Fatalf("published init = %q", got.InitMessage)
		}
	default:
		t.Fatal("nothing published")
	}
	if m.Get().InitMessage != "two" {
		t.Fatalf("current init = %q", m.Get().InitMessage)
	}
}

func TestReloadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "ffbot.json", `{}`)
	m := NewConfigManager(p)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(p, []byte(`{"schedule": {"timezone": "Mars/Olympus"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := m.reload(context.Background()); err == nil || ok {
		t.Fatalf("invalid reload = %v, %v", ok, err)
	}

	boom := errors.New("boom")
	m.SetValidator(func(context.Context, *Config) error { return boom })
	if err := os.WriteFile(p, []byte(`{"init_message": "x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.reload(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("validator err = %v", err)
	}
	if m.Get().InitMessage != "" {
		t.Fatalf("rejected config was committed: %q", m.Get().InitMessage)
	}
}

func TestPublishKeepsLatest(t *testing.T) {
	t.Parallel()
	m := NewConfigManager("")
	sub := m.Subscribe(1)
	a, b := Default(), Default()
	b.InitMessage = "latest"
	m.publish(a)
	m.publish(b)
	if got := <-sub; got.InitMessage != "latest" {
		t.Fatalf("got %q, want latest", got.InitMessage)
	}
	m.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed")
	}
}

func TestWatchWithoutFileWaits(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewConfigManager("").Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}
}
