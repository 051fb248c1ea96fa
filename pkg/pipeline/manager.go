package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/procbus/pkg/log"
	"github.com/bft-labs/procbus/pkg/notify"
	"github.com/bft-labs/procbus/pkg/process"
	"github.com/bft-labs/procbus/pkg/queue"
	"github.com/bft-labs/procbus/pkg/stackmon"
)

// Worker is the run loop of a single pipeline process. Run blocks until
// the worker finishes or the context is cancelled between messages;
// blocking receives inside the messaging core are not interrupted by the
// context, only by messages.
type Worker interface {
	Run(ctx context.Context) error
}

// ObjectCloser is implemented by workers that hold resources (sockets,
// codecs) needing release during teardown.
type ObjectCloser interface {
	CloseObjects()
}

// Factory builds a worker around its messaging core.
type Factory func(proc *process.Process) (Worker, error)

// Manager wires a pipeline from its configuration and supervises the
// workers: one inbound queue per (channel, consumer) pair, fan-out lists
// on every publisher, one system queue per process, and a goroutine per
// worker with guaranteed teardown.
type Manager struct {
	cfg       Config
	factories map[string]Factory
	shared    *process.SharedState
	logger    log.Logger
	notifier  notify.Notifier
	lc        *lifecycle

	mu     sync.Mutex
	procs  map[string]*process.Process
	cancel context.CancelFunc
}

// ManagerOption configures optional behavior of a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger the manager and every process log through.
func WithLogger(logger log.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNotifier sets the watcher notifier handed to every process.
func WithNotifier(notifier notify.Notifier) ManagerOption {
	return func(m *Manager) {
		m.notifier = notifier
	}
}

// WithSharedObjects supplies the cross-process shared objects. The map
// keys become the fixed attribute set of the pipeline's shared state.
func WithSharedObjects(objects map[string]interface{}) ManagerOption {
	return func(m *Manager) {
		m.shared = process.NewSharedState(objects)
	}
}

// NewManager creates a manager for the given pipeline configuration.
// Returns an error if the configuration is invalid.
func NewManager(cfg Config, opts ...ManagerOption) (*Manager, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:       cfg,
		factories: make(map[string]Factory),
		logger:    log.NewNoopLogger(),
		notifier:  notify.Noop{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.shared == nil {
		m.shared = process.NewSharedState(nil)
	}

	m.lc = newLifecycle(m.logger)
	return m, nil
}

// Register binds a worker factory to the name referenced by
// ProcessConfig.Worker. Must be called before Start.
func (m *Manager) Register(workerName string, factory Factory) {
	m.factories[workerName] = factory
}

// Process returns the messaging core of the named process, or nil before
// Start or for an unknown name. Intended for tests and inspection.
func (m *Manager) Process(name string) *process.Process {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.procs[name]
}

// State returns the current pipeline lifecycle state.
func (m *Manager) State() State {
	return m.lc.current()
}

// Start wires the queues, builds every worker, and runs each in its own
// goroutine. Returns immediately after the workers are launched.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lc.canStart() {
		return ErrAlreadyRunning
	}
	if err := m.lc.transitionTo(StateStarting, "Start() called"); err != nil {
		return err
	}

	procs, workers, err := m.wire()
	if err != nil {
		_ = m.lc.transitionTo(StateCrashed, "wiring failed")
		return err
	}
	m.procs = procs

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	for name, w := range workers {
		proc := procs[name]
		if closer, ok := w.(ObjectCloser); ok {
			proc.SetCloseHook(closer.CloseObjects)
		}

		m.lc.addWorker()
		go func(name string, w Worker, proc *process.Process) {
			defer m.lc.workerDone()
			defer proc.FreeResources()

			m.logger.Info("process started", log.String("process", name))
			err := w.Run(runCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Error("process failed", log.String("process", name), log.Err(err))
				_ = m.lc.transitionTo(StateCrashed, "process failed: "+name)
				// One dead worker takes the pipeline down with it
				cancel()
				return
			}
			m.logger.Info("process finished", log.String("process", name))
		}(name, w, proc)
	}

	if err := m.lc.transitionTo(StateRunning, "workers launched"); err != nil {
		return err
	}
	return nil
}

// Stop cancels the run context and waits for workers to finish, bounded
// by the configured shutdown timeout. Each worker's FreeResources runs
// as its goroutine exits. A crashed pipeline can still be stopped; the
// wait then reaps whatever workers survived the crash. Returns
// ErrShutdownTimeout if workers did not finish in time; their goroutines
// are then abandoned.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.lc.canStop() {
		m.mu.Unlock()
		return ErrNotRunning
	}
	if err := m.lc.transitionTo(StateStopping, "Stop() called"); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	err := m.lc.waitWithTimeout(m.cfg.ShutdownTimeout)
	if err != nil {
		_ = m.lc.transitionTo(StateCrashed, "shutdown timeout")
	} else {
		_ = m.lc.transitionTo(StateStopped, "graceful shutdown")
	}
	return err
}

// wire builds all queues and processes, then the workers around them.
func (m *Manager) wire() (map[string]*process.Process, map[string]Worker, error) {
	// One inbound queue per (channel, consumer) pair; publishers fan out
	// to every consumer of the channel.
	inbound := make(map[string]map[string]*queue.Queue) // process -> channel -> queue
	destinations := make(map[string][]*queue.Queue)     // channel -> consumer queues

	for _, pc := range m.cfg.Processes {
		inbound[pc.Name] = make(map[string]*queue.Queue, len(pc.Consume))
		for _, ch := range pc.Consume {
			q := queue.New(m.cfg.capacityFor(ch))
			inbound[pc.Name][ch] = q
			destinations[ch] = append(destinations[ch], q)
		}
	}

	// One system queue per process identity, shared map for routing.
	system := make(map[string]*queue.Queue, len(m.cfg.Processes))
	for _, pc := range m.cfg.Processes {
		system[pc.Name] = queue.New(m.cfg.SystemQueueCapacity)
	}

	procs := make(map[string]*process.Process, len(m.cfg.Processes))
	workers := make(map[string]Worker, len(m.cfg.Processes))

	for _, pc := range m.cfg.Processes {
		outbound := make(map[string][]*queue.Queue, len(pc.Publish))
		for _, ch := range pc.Publish {
			outbound[ch] = append([]*queue.Queue(nil), destinations[ch]...)
		}

		opts := []process.Option{
			process.WithLogger(m.logger),
			process.WithNotifier(m.notifier),
			process.WithSystemQueues(system),
			process.WithQueuesToClear(pc.QueuesToClear...),
		}
		if pc.Monitoring {
			opts = append(opts, process.WithMonitoring(stackmon.DefaultConfig()))
		}

		proc := process.New(pc.Name, inbound[pc.Name], outbound, m.shared, opts...)

		factoryName := pc.Worker
		if factoryName == "" {
			factoryName = pc.Name
		}
		factory, ok := m.factories[factoryName]
		if !ok {
			return nil, nil, fmt.Errorf("procbus: no worker factory registered for %q", factoryName)
		}

		w, err := factory(proc)
		if err != nil {
			return nil, nil, fmt.Errorf("procbus: build worker %q: %w", pc.Name, err)
		}

		procs[pc.Name] = proc
		workers[pc.Name] = w
	}

	return procs, workers, nil
}
