package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileConfig(t *testing.T) {
	content := `
log_level = "debug"
watcher_url = "https://watcher.example.com"
auth_key = "secret"
http_timeout = "5s"
shutdown_timeout = "12s"
default_capacity = 500
system_queue_capacity = 20
watch_config = true

[channel_capacity]
video = 3

[[process]]
name = "camera"
worker = "relay"
consume = ["raw"]
publish = ["video"]
queues_to_clear = ["video"]
monitoring = true

[[process]]
name = "encoder"
consume = ["video"]
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error: %v", err)
	}

	if fc.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", fc.LogLevel)
	}
	if fc.WatcherURL != "https://watcher.example.com" {
		t.Errorf("WatcherURL = %q", fc.WatcherURL)
	}
	if fc.ChannelCapacity["video"] != 3 {
		t.Errorf("ChannelCapacity[video] = %d, want 3", fc.ChannelCapacity["video"])
	}
	if len(fc.Processes) != 2 {
		t.Fatalf("Processes = %d, want 2", len(fc.Processes))
	}
	if fc.Processes[0].Worker != "relay" {
		t.Errorf("Processes[0].Worker = %q, want relay", fc.Processes[0].Worker)
	}
	if fc.Processes[0].Monitoring == nil || !*fc.Processes[0].Monitoring {
		t.Error("Processes[0].Monitoring not set")
	}
	if fc.Processes[1].Monitoring != nil {
		t.Error("Processes[1].Monitoring should be nil when absent")
	}
}

func TestLoadFileConfigMissing(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("LoadFileConfig() expected error for missing file")
	}
}

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		check      func(t *testing.T, cfg Config)
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				LogLevel:            "debug",
				WatcherURL:          "https://watcher.example.com",
				AuthKey:             "secret",
				HTTPTimeout:         "5s",
				ShutdownTimeout:     "12s",
				DefaultCapacity:     500,
				SystemQueueCapacity: 20,
				WatchConfig:         &trueVal,
				Processes:           []FileProcess{{Name: "camera", Publish: []string{"video"}}},
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			check: func(t *testing.T, cfg Config) {
				if cfg.LogLevel != "debug" {
					t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
				}
				if cfg.HTTPTimeout != 5*time.Second {
					t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
				}
				if cfg.ShutdownTimeout != 12*time.Second {
					t.Errorf("ShutdownTimeout = %v, want 12s", cfg.ShutdownTimeout)
				}
				if cfg.DefaultCapacity != 500 {
					t.Errorf("DefaultCapacity = %d, want 500", cfg.DefaultCapacity)
				}
				if !cfg.WatchConfig {
					t.Error("WatchConfig not applied")
				}
				if len(cfg.Processes) != 1 || cfg.Processes[0].Name != "camera" {
					t.Errorf("Processes not applied: %+v", cfg.Processes)
				}
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				LogLevel:   "debug",
				WatcherURL: "https://file.example.com",
			},
			changed: map[string]bool{"log-level": true},
			initial: func() Config {
				cfg := DefaultConfig()
				cfg.LogLevel = "warn"
				return cfg
			}(),
			check: func(t *testing.T, cfg Config) {
				if cfg.LogLevel != "warn" {
					t.Errorf("LogLevel = %q, want flag value warn kept", cfg.LogLevel)
				}
				if cfg.WatcherURL != "https://file.example.com" {
					t.Errorf("WatcherURL = %q, want file value applied", cfg.WatcherURL)
				}
			},
		},
		{
			name: "invalid duration",
			fileConfig: FileConfig{
				HTTPTimeout: "not-a-duration",
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
