package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (PROCBUS_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", os.Getenv("PROCBUS_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("watcher-url", os.Getenv("PROCBUS_WATCHER_URL"), &cfg.WatcherURL)
	s.setString("auth-key", os.Getenv("PROCBUS_AUTH_KEY"), &cfg.AuthKey)

	if err := s.setDuration("timeout", os.Getenv("PROCBUS_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("PROCBUS_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("default-capacity", os.Getenv("PROCBUS_DEFAULT_CAPACITY"), &cfg.DefaultCapacity); err != nil {
		return err
	}
	if err := s.setIntFromString("system-queue-capacity", os.Getenv("PROCBUS_SYSTEM_QUEUE_CAPACITY"), &cfg.SystemQueueCapacity); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("PROCBUS_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
