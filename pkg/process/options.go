package process

import (
	"github.com/bft-labs/procbus/pkg/log"
	"github.com/bft-labs/procbus/pkg/notify"
	"github.com/bft-labs/procbus/pkg/queue"
	"github.com/bft-labs/procbus/pkg/stackmon"
)

// Option configures optional behavior of a Process.
type Option func(*options)

// options holds the optional configuration for a Process instance.
type options struct {
	logger        log.Logger
	notifier      notify.Notifier
	system        map[string]*queue.Queue
	monitorCfg    *stackmon.Config
	queuesToClear []string
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:   log.NewNoopLogger(),
		notifier: notify.Noop{},
	}
}

// WithLogger sets a custom logger for structured logging.
// The process logs through a sub-logger named after itself.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNotifier sets the watcher notifier used by Heartbeat.
// If not provided, heartbeats are discarded.
func WithNotifier(notifier notify.Notifier) Option {
	return func(o *options) {
		o.notifier = notifier
	}
}

// WithSystemQueues supplies the process-name to system-queue mapping used
// for personal messaging. The map must contain an entry for this process
// if it intends to wait for replies, and entries for every process it
// addresses replies to.
func WithSystemQueues(system map[string]*queue.Queue) Option {
	return func(o *options) {
		o.system = system
	}
}

// WithMonitoring enables the diagnostic stack sampler with the given
// configuration. The sampler starts at construction and is stopped during
// FreeResources.
func WithMonitoring(cfg stackmon.Config) Option {
	return func(o *options) {
		o.monitorCfg = &cfg
	}
}

// WithQueuesToClear declares the channel names FreeResources drains
// during teardown.
func WithQueuesToClear(names ...string) Option {
	return func(o *options) {
		o.queuesToClear = append(o.queuesToClear, names...)
	}
}
