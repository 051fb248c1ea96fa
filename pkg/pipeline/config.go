package pipeline

import (
	"fmt"
	"time"
)

// ProcessConfig declares one worker and its channel bindings.
type ProcessConfig struct {
	// Name is the unique process name. It is also the address used for
	// personal-message routing.
	Name string

	// Worker selects the registered worker factory. Empty means Name.
	Worker string

	// Consume lists the channel names the process reads from.
	Consume []string

	// Publish lists the channel names the process writes to.
	Publish []string

	// QueuesToClear lists the channels drained during teardown.
	QueuesToClear []string

	// Monitoring enables the diagnostic stack sampler for this process.
	Monitoring bool
}

// Config declares a whole pipeline: its channel capacities and its
// processes. The manager turns it into wired queues and running workers.
type Config struct {
	// DefaultCapacity is the capacity of channels without an explicit
	// entry in ChannelCapacity. Default: 1000.
	DefaultCapacity int

	// ChannelCapacity overrides the capacity of individual channels,
	// e.g. a video channel kept at 3 for latest-wins streaming.
	ChannelCapacity map[string]int

	// SystemQueueCapacity is the capacity of each per-process system
	// queue. Default: 100.
	SystemQueueCapacity int

	// ShutdownTimeout bounds Stop's wait for workers to finish.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// Processes lists the workers of the pipeline.
	Processes []ProcessConfig
}

// DefaultConfig returns a Config with default values and no processes.
func DefaultConfig() Config {
	return Config{
		DefaultCapacity:     1000,
		SystemQueueCapacity: 100,
		ShutdownTimeout:     DefaultShutdownTimeout,
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.DefaultCapacity <= 0 {
		c.DefaultCapacity = 1000
	}
	if c.SystemQueueCapacity <= 0 {
		c.SystemQueueCapacity = 100
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Processes) == 0 {
		return fmt.Errorf("procbus: pipeline declares no processes")
	}

	seen := make(map[string]bool, len(c.Processes))
	for _, pc := range c.Processes {
		if pc.Name == "" {
			return fmt.Errorf("procbus: process with empty name")
		}
		if seen[pc.Name] {
			return fmt.Errorf("procbus: duplicate process name %q", pc.Name)
		}
		seen[pc.Name] = true

		consumed := make(map[string]bool, len(pc.Consume))
		for _, ch := range pc.Consume {
			if consumed[ch] {
				return fmt.Errorf("procbus: process %q consumes channel %q twice", pc.Name, ch)
			}
			consumed[ch] = true
		}
		published := make(map[string]bool, len(pc.Publish))
		for _, ch := range pc.Publish {
			if published[ch] {
				return fmt.Errorf("procbus: process %q publishes channel %q twice", pc.Name, ch)
			}
			published[ch] = true
		}
	}

	return nil
}

// capacityFor returns the capacity of the named channel.
func (c *Config) capacityFor(channel string) int {
	if cap, ok := c.ChannelCapacity[channel]; ok && cap > 0 {
		return cap
	}
	return c.DefaultCapacity
}
