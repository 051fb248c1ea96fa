package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bft-labs/procbus/pkg/pipeline"
)

// Config holds CLI configuration for procbus.
type Config struct {
	LogLevel string

	WatcherURL string
	AuthKey    string

	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultCapacity     int
	SystemQueueCapacity int
	ChannelCapacity     map[string]int

	WatchConfig bool

	Processes []pipeline.ProcessConfig
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:            "info",
		HTTPTimeout:         10 * time.Second,
		ShutdownTimeout:     30 * time.Second,
		DefaultCapacity:     1000,
		SystemQueueCapacity: 100,
		AuthKey:             os.Getenv("PROCBUS_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	// Ensure no trailing slash
	if len(c.WatcherURL) > 0 && c.WatcherURL[len(c.WatcherURL)-1] == '/' {
		c.WatcherURL = c.WatcherURL[:len(c.WatcherURL)-1]
	}

	pc := c.ToPipeline()
	return pc.Validate()
}

// ToPipeline converts the CLI configuration into a pipeline declaration.
func (c *Config) ToPipeline() pipeline.Config {
	return pipeline.Config{
		DefaultCapacity:     c.DefaultCapacity,
		ChannelCapacity:     c.ChannelCapacity,
		SystemQueueCapacity: c.SystemQueueCapacity,
		ShutdownTimeout:     c.ShutdownTimeout,
		Processes:           append([]pipeline.ProcessConfig(nil), c.Processes...),
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
