package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/procbus/internal/cliconfig"
	logAdapter "github.com/bft-labs/procbus/pkg/log"
	"github.com/bft-labs/procbus/pkg/notify"
	"github.com/bft-labs/procbus/pkg/pipeline"
	"github.com/bft-labs/procbus/pkg/pipeline/workers"
	"github.com/bft-labs/procbus/plugins/configwatcher"
)

const helpDescription = `
Run a pipeline of worker processes connected by pre-wired message channels.

Highlights:
  - Declare processes and channels once in config.toml; queues are wired for you.
  - Publish fans out to every consumer of a channel; consume is a blocking pop.
  - Correlated request/response between processes over per-process system queues.
  - Optional liveness heartbeats to an external watcher service.
`

var exampleUsage = strings.TrimSpace(`
  procbus --config ./pipeline.toml
  procbus --config ./pipeline.toml --watch-config
  procbus --log-level debug --watcher-url https://watcher.example.com
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "procbus",
		Short:   "Run a pipeline of worker processes over pre-wired message channels",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.procbus/config.toml), then apply flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			loadConfig := func() (cliconfig.Config, error) {
				c := cfg
				if cfgFile != "" && cliconfig.FileExists(cfgFile) {
					fc, err := cliconfig.LoadFileConfig(cfgFile)
					if err != nil {
						return c, fmt.Errorf("load config: %w", err)
					}
					if err := cliconfig.ApplyFileConfig(&c, fc, changed); err != nil {
						return c, err
					}
				}

				// Environment variables (PROCBUS_*) override file config but
				// are overridden by flags (checked via changed map)
				if err := cliconfig.ApplyEnvConfig(&c, changed); err != nil {
					return c, err
				}

				if err := c.Validate(); err != nil {
					return c, err
				}
				return c, nil
			}

			runCfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Log configuration (masking the auth key)
			logCfg := runCfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			zl := log.Level(cliconfig.ParseLevel(runCfg.LogLevel))
			logger := logAdapter.NewZerologAdapterWithLogger(zl)

			var notifier notify.Notifier = notify.Noop{}
			if runCfg.WatcherURL != "" {
				client := &http.Client{Timeout: runCfg.HTTPTimeout}
				notifier = notify.NewHTTPNotifier(client, runCfg.WatcherURL, runCfg.AuthKey, logger)
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			// Config watcher triggers a pipeline restart with the new file
			reloadCh := make(chan struct{}, 1)
			if runCfg.WatchConfig && cfgFile != "" {
				w := configwatcher.New(cfgFile, func() {
					select {
					case reloadCh <- struct{}{}:
					default:
					}
				}, configwatcher.Config{Logger: logger})
				if err := w.Start(ctx); err != nil {
					return err
				}
				defer w.Stop()
			}

			for {
				m, err := pipeline.NewManager(runCfg.ToPipeline(),
					pipeline.WithLogger(logger),
					pipeline.WithNotifier(notifier),
				)
				if err != nil {
					return fmt.Errorf("create pipeline: %w", err)
				}
				workers.Register(m)

				if err := m.Start(ctx); err != nil {
					return fmt.Errorf("start pipeline: %w", err)
				}

				// Poll for a crashed pipeline
				crashCh := make(chan struct{})
				pollCtx, pollCancel := context.WithCancel(ctx)
				go func() {
					ticker := time.NewTicker(100 * time.Millisecond)
					defer ticker.Stop()
					for {
						select {
						case <-pollCtx.Done():
							return
						case <-ticker.C:
							if m.State() == pipeline.StateCrashed {
								close(crashCh)
								return
							}
						}
					}
				}()

				reload := false
				select {
				case <-sigCh:
					log.Info().Msg("received signal, stopping...")
				case <-crashCh:
					log.Error().Msg("pipeline crashed")
				case <-reloadCh:
					log.Info().Msg("config changed, restarting pipeline...")
					reload = true
				}
				pollCancel()

				if err := m.Stop(); err != nil {
					log.Error().Err(err).Msg("stop pipeline")
				}

				if !reload {
					return nil
				}

				next, err := loadConfig()
				if err != nil {
					log.Error().Err(err).Msg("reload config, keeping previous")
				} else {
					runCfg = next
				}
			}
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.procbus/config.toml)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")

	root.Flags().StringVar(&cfg.WatcherURL, "watcher-url", cfg.WatcherURL, "base watcher service URL for liveness heartbeats")
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for watcher authentication")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout for watcher requests")

	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "maximum wait for workers during shutdown")
	root.Flags().IntVar(&cfg.DefaultCapacity, "default-capacity", cfg.DefaultCapacity, "default channel queue capacity")
	root.Flags().IntVar(&cfg.SystemQueueCapacity, "system-queue-capacity", cfg.SystemQueueCapacity, "per-process system queue capacity")

	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "restart the pipeline when the config file changes")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("procbus")
		os.Exit(1)
	}
}
