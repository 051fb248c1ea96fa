package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/procbus/pkg/log"
)

// State represents the lifecycle state of a pipeline.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// Common lifecycle errors.
var (
	ErrNotRunning      = errors.New("procbus: pipeline not running")
	ErrAlreadyRunning  = errors.New("procbus: pipeline already running")
	ErrShutdownTimeout = errors.New("procbus: shutdown timeout")
)

// DefaultShutdownTimeout is the default maximum time to wait for workers
// to finish during Stop.
const DefaultShutdownTimeout = 30 * time.Second

// lifecycle is the state machine guarding pipeline start/stop and
// accounting for running workers.
type lifecycle struct {
	mu     sync.RWMutex
	state  State
	wg     sync.WaitGroup
	logger log.Logger
}

func newLifecycle(logger log.Logger) *lifecycle {
	return &lifecycle{state: StateStopped, logger: logger}
}

// current returns the current lifecycle state.
func (l *lifecycle) current() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// canStart reports whether Start may be called.
func (l *lifecycle) canStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateCrashed
}

// canStop reports whether Stop may be called.
func (l *lifecycle) canStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting || l.state == StateCrashed
}

// transitionTo attempts to move to a new state.
// Returns an error if the transition is not valid.
func (l *lifecycle) transitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	switch oldState {
	case StateStopped:
		if newState != StateStarting {
			l.mu.Unlock()
			return ErrNotRunning
		}
	case StateStarting:
		if newState != StateRunning && newState != StateCrashed {
			l.mu.Unlock()
			return ErrAlreadyRunning
		}
	case StateRunning:
		if newState != StateStopping && newState != StateCrashed {
			l.mu.Unlock()
			return ErrAlreadyRunning
		}
	case StateStopping:
		if newState != StateStopped && newState != StateCrashed {
			l.mu.Unlock()
			return ErrAlreadyRunning
		}
	case StateCrashed:
		if newState != StateStarting && newState != StateStopping {
			l.mu.Unlock()
			return ErrNotRunning
		}
	}

	l.state = newState
	l.mu.Unlock()

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

// addWorker increments the worker count.
func (l *lifecycle) addWorker() {
	l.wg.Add(1)
}

// workerDone decrements the worker count.
func (l *lifecycle) workerDone() {
	l.wg.Done()
}

// waitWithTimeout waits for all workers to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *lifecycle) waitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, forcing exit",
			log.Duration("timeout", timeout),
		)
		return ErrShutdownTimeout
	}
}
