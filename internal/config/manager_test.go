package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfigDir, EnvAPIURL, EnvAPITimeout, EnvPollInterval, EnvLogLevel, EnvLogFile, EnvNoColor, EnvNonInteractive} {
		t.Setenv(k, "")
	}
}

// writeSection writes a section file below dir/config/sections.
func writeSection(t *testing.T, dir, name, content string) {
	t.Helper()
	sections := filepath.Join(dir, "config", "sections")
	if err := os.MkdirAll(sections, 0o755); err != nil {
		t.Fatalf("create sections dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sections, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestNewConfigManager(t *testing.T) {
	m := NewConfigManager()
	if m.loader == nil {
		t.Error("NewConfigManager() should initialize loader")
	}
	if m.state != stateUninitialized {
		t.Errorf("expected state %d (uninitialized), got %d", stateUninitialized, m.state)
	}
	if m.Get() != nil {
		t.Error("Get() before Load() should return nil")
	}
}

func TestConfigManagerLoadDefaults(t *testing.T) {
	clearEnv(t)
	m := NewConfigManager()

	cfg, err := m.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.Poll.Interval != DefaultPollInterval {
		t.Errorf("Poll.Interval = %v, want %v", cfg.Poll.Interval, DefaultPollInterval)
	}
	if !cfg.Poll.Enabled {
		t.Error("polling should be enabled by default")
	}
}

func TestConfigManagerLoadSections(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeSection(t, dir, "api.yaml", "api:\n  base_url: https://api.example.com/api\n  timeout: 5s\n")
	writeSection(t, dir, "poll.yaml", "poll:\n  enabled: true\n  interval: 1m\n")

	m := NewConfigManager()
	cfg, err := m.Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.Poll.Interval != time.Minute {
		t.Errorf("Interval = %v, want 1m", cfg.Poll.Interval)
	}
	if cfg.System.LogLevel != DefaultLogLevel {
		t.Errorf("missing system.yaml should keep default log level, got %q", cfg.System.LogLevel)
	}
	if loaded := m.LoadedSections(); !loaded["api"] || loaded["system"] {
		t.Errorf("LoadedSections() = %v", loaded)
	}
}

func TestConfigManagerLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeSection(t, dir, "api.yaml", "api: [unclosed\n")

	_, err := NewConfigManager().Load(dir)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Fatalf("Load() error = %v, want ErrInvalidYAML", err)
	}
}

func TestConfigManagerEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "https://staging.example.com/api")
	t.Setenv(EnvPollInterval, "45s")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvNoColor, "1")

	cfg, err := NewConfigManager().Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.BaseURL != "https://staging.example.com/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Poll.Interval != 45*time.Second {
		t.Errorf("Interval = %v", cfg.Poll.Interval)
	}
	if cfg.System.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.System.LogLevel)
	}
	if !cfg.System.NoColor {
		t.Error("NoColor should be true")
	}
}

func TestConfigManagerEnvBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPITimeout, "soon")

	_, err := NewConfigManager().Load(t.TempDir())
	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Load() error = %v, want *ValidationErrors", err)
	}
	if verrs.Errors[0].Field != EnvAPITimeout {
		t.Errorf("Field = %q, want %q", verrs.Errors[0].Field, EnvAPITimeout)
	}
}

func TestConfigManagerSaveAndReload(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	m := NewConfigManager()
	if _, err := m.Load(dir); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	api := m.Get().API
	api.BaseURL = "https://prod.example.com/api"
	if err := m.SetSection("api", api); err != nil {
		t.Fatalf("SetSection() error: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	var notified Config
	if err := m.Watch(func(c Config) { notified = c }); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if notified.API.BaseURL != "https://prod.example.com/api" {
		t.Errorf("watch callback saw BaseURL %q", notified.API.BaseURL)
	}

	if _, err := os.Stat(filepath.Join(dir, "config", "sections", "api.yaml")); err != nil {
		t.Errorf("api.yaml not written: %v", err)
	}
}

func TestConfigManagerSaveKeepsEnvironmentOut(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "https://staging.example.com/api")
	dir := t.TempDir()
	m := NewConfigManager()
	if _, err := m.Load(dir); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	section, err := m.GetSection("poll")
	if err != nil {
		t.Fatalf("GetSection() error: %v", err)
	}
	poll := section.(PollConfig)
	poll.Interval = 10 * time.Second
	if err := m.SetSection("poll", poll); err != nil {
		t.Fatalf("SetSection() error: %v", err)
	}
	if got := m.Get().API.BaseURL; got != "https://staging.example.com/api" {
		t.Errorf("effective BaseURL = %q, want the environment value", got)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config", "sections", "api.yaml"))
	if err != nil {
		t.Fatalf("read api.yaml: %v", err)
	}
	if strings.Contains(string(data), "staging") {
		t.Errorf("api.yaml persisted an environment override:\n%s", data)
	}

	clearEnv(t)
	cfg, err := NewConfigManager().Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Poll.Interval != 10*time.Second || cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("reloaded poll.interval = %v, api.base_url = %q", cfg.Poll.Interval, cfg.API.BaseURL)
	}
}

func TestConfigManagerSetSectionRejectsInvalid(t *testing.T) {
	clearEnv(t)
	m := NewConfigManager()
	if _, err := m.Load(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	poll := m.Get().Poll
	poll.Interval = time.Second
	if err := m.SetSection("poll", poll); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("SetSection() error = %v, want ErrInvalidConfig", err)
	}
	if got := m.Get().Poll.Interval; got != DefaultPollInterval {
		t.Errorf("Interval after rejected set = %v, want %v", got, DefaultPollInterval)
	}
	section, _ := m.GetSection("poll")
	if got := section.(PollConfig).Interval; got != DefaultPollInterval {
		t.Errorf("stored Interval after rejected set = %v", got)
	}
}

func TestConfigManagerUninitialized(t *testing.T) {
	m := NewConfigManager()
	if _, err := m.GetSection("api"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("GetSection() error = %v, want ErrNotInitialized", err)
	}
	if err := m.Save(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Save() error = %v, want ErrNotInitialized", err)
	}
	if err := m.Watch(func(Config) {}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Watch() error = %v, want ErrNotInitialized", err)
	}
	if m.LoadedSections() != nil {
		t.Error("LoadedSections() before Load() should be nil")
	}
}

func TestConfigManagerSetSectionMismatch(t *testing.T) {
	clearEnv(t)
	m := NewConfigManager()
	if _, err := m.Load(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if err := m.SetSection("api", PollConfig{}); !errors.Is(err, ErrSectionTypeMismatch) {
		t.Errorf("SetSection() error = %v, want ErrSectionTypeMismatch", err)
	}
	if err := m.SetSection("nope", APIConfig{}); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("SetSection() error = %v, want ErrSectionNotFound", err)
	}
}

func TestDefaultDirHonoursEnv(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/meetly-test")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/meetly-test" {
		t.Errorf("DefaultDir() = %q", dir)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MEETLY_LOG_FILE=/var/log/meetly.log\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set, and
	// t.Setenv("", ...) counts as set, so unset it for this check.
	_ = os.Unsetenv(EnvLogFile)

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv(EnvLogFile); got != "/var/log/meetly.log" {
		t.Errorf("%s = %q", EnvLogFile, got)
	}
	_ = os.Unsetenv(EnvLogFile)

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file should not error, got %v", err)
	}
}
