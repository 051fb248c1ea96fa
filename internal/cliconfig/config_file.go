package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/procbus/pkg/pipeline"
)

// FileProcess declares one pipeline process in the config file.
type FileProcess struct {
	Name          string   `toml:"name"`
	Worker        string   `toml:"worker"`
	Consume       []string `toml:"consume"`
	Publish       []string `toml:"publish"`
	QueuesToClear []string `toml:"queues_to_clear"`
	Monitoring    *bool    `toml:"monitoring"`
}

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	LogLevel            string         `toml:"log_level"`
	WatcherURL          string         `toml:"watcher_url"`
	AuthKey             string         `toml:"auth_key"`
	HTTPTimeout         string         `toml:"http_timeout"`
	ShutdownTimeout     string         `toml:"shutdown_timeout"`
	DefaultCapacity     int            `toml:"default_capacity"`
	SystemQueueCapacity int            `toml:"system_queue_capacity"`
	ChannelCapacity     map[string]int `toml:"channel_capacity"`
	WatchConfig         *bool          `toml:"watch_config"`
	Processes           []FileProcess  `toml:"process"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.procbus/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".procbus", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
// The process list always comes from the file; it has no flag equivalent.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("watcher-url", fc.WatcherURL, &cfg.WatcherURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setInt("default-capacity", fc.DefaultCapacity, &cfg.DefaultCapacity)
	s.setInt("system-queue-capacity", fc.SystemQueueCapacity, &cfg.SystemQueueCapacity)

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	if len(fc.ChannelCapacity) > 0 {
		cfg.ChannelCapacity = make(map[string]int, len(fc.ChannelCapacity))
		for ch, cap := range fc.ChannelCapacity {
			cfg.ChannelCapacity[ch] = cap
		}
	}

	if len(fc.Processes) > 0 {
		cfg.Processes = make([]pipeline.ProcessConfig, 0, len(fc.Processes))
		for _, fp := range fc.Processes {
			pc := pipeline.ProcessConfig{
				Name:          fp.Name,
				Worker:        fp.Worker,
				Consume:       fp.Consume,
				Publish:       fp.Publish,
				QueuesToClear: fp.QueuesToClear,
			}
			if fp.Monitoring != nil {
				pc.Monitoring = *fp.Monitoring
			}
			cfg.Processes = append(cfg.Processes, pc)
		}
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
