package cliconfig

import (
	"testing"
	"time"

	"github.com/bft-labs/procbus/pkg/pipeline"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Processes = []pipeline.ProcessConfig{
		{Name: "camera", Publish: []string{"video"}},
		{Name: "encoder", Consume: []string{"video"}},
	}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero http timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, true},
		{"no processes", func(c *Config) { c.Processes = nil }, true},
		{"duplicate process", func(c *Config) {
			c.Processes = append(c.Processes, c.Processes[0])
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTrimsTrailingSlash(t *testing.T) {
	cfg := validConfig()
	cfg.WatcherURL = "https://watcher.example.com/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if cfg.WatcherURL != "https://watcher.example.com" {
		t.Errorf("WatcherURL = %q, want trailing slash removed", cfg.WatcherURL)
	}
}

func TestToPipeline(t *testing.T) {
	cfg := validConfig()
	cfg.DefaultCapacity = 50
	cfg.SystemQueueCapacity = 7
	cfg.ShutdownTimeout = 3 * time.Second
	cfg.ChannelCapacity = map[string]int{"video": 3}

	pc := cfg.ToPipeline()
	if pc.DefaultCapacity != 50 {
		t.Errorf("DefaultCapacity = %d, want 50", pc.DefaultCapacity)
	}
	if pc.SystemQueueCapacity != 7 {
		t.Errorf("SystemQueueCapacity = %d, want 7", pc.SystemQueueCapacity)
	}
	if pc.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", pc.ShutdownTimeout)
	}
	if pc.ChannelCapacity["video"] != 3 {
		t.Errorf("ChannelCapacity[video] = %d, want 3", pc.ChannelCapacity["video"])
	}
	if len(pc.Processes) != 2 {
		t.Fatalf("Processes = %d, want 2", len(pc.Processes))
	}

	// The process list is a copy, not a shared slice.
	pc.Processes[0].Name = "mutated"
	if cfg.Processes[0].Name != "camera" {
		t.Error("ToPipeline() shares the process slice with Config")
	}
}
