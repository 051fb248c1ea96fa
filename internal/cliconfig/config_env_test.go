package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("PROCBUS_LOG_LEVEL", "debug")
	t.Setenv("PROCBUS_WATCHER_URL", "https://env.example.com")
	t.Setenv("PROCBUS_HTTP_TIMEOUT", "7s")
	t.Setenv("PROCBUS_DEFAULT_CAPACITY", "42")
	t.Setenv("PROCBUS_WATCH_CONFIG", "true")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.WatcherURL != "https://env.example.com" {
		t.Errorf("WatcherURL = %q", cfg.WatcherURL)
	}
	if cfg.HTTPTimeout != 7*time.Second {
		t.Errorf("HTTPTimeout = %v, want 7s", cfg.HTTPTimeout)
	}
	if cfg.DefaultCapacity != 42 {
		t.Errorf("DefaultCapacity = %d, want 42", cfg.DefaultCapacity)
	}
	if !cfg.WatchConfig {
		t.Error("WatchConfig not applied")
	}
}

func TestApplyEnvConfigRespectsFlags(t *testing.T) {
	t.Setenv("PROCBUS_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	changed := map[string]bool{"log-level": true}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig() error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want flag value warn kept", cfg.LogLevel)
	}
}

func TestApplyEnvConfigInvalidDuration(t *testing.T) {
	t.Setenv("PROCBUS_HTTP_TIMEOUT", "soon")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Fatal("ApplyEnvConfig() expected error for invalid duration")
	}
}
