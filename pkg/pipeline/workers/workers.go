package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/procbus/pkg/pipeline"
	"github.com/bft-labs/procbus/pkg/process"
)

// Stub is a worker without any useful work. It idles until the run
// context is cancelled, sending a heartbeat each interval so the watcher
// sees the pipeline alive.
type Stub struct {
	Proc     *process.Process
	Interval time.Duration
}

// NewStub creates a stub worker with a 20 second heartbeat interval.
func NewStub(proc *process.Process) *Stub {
	return &Stub{Proc: proc, Interval: 20 * time.Second}
}

// Run idles until ctx is cancelled.
func (s *Stub) Run(ctx context.Context) error {
	s.Proc.Log().Info("stub started")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Proc.Heartbeat("stub alive")
		}
	}
}

// Relay forwards every message from its consume channel to its publish
// channel. With empty From/To it relies on default-channel resolution,
// so it fits any process with one channel on each side.
type Relay struct {
	Proc            *process.Process
	From            string
	To              string
	ClearOnOverflow bool
}

// NewRelay creates a relay using default-channel resolution on both
// sides.
func NewRelay(proc *process.Process) *Relay {
	return &Relay{Proc: proc}
}

// Run forwards messages until ctx is cancelled between messages.
func (r *Relay) Run(ctx context.Context) error {
	r.Proc.Log().Info("relay started")

	var consumeOpts []process.ConsumeOption
	if r.From != "" {
		consumeOpts = append(consumeOpts, process.FromQueue(r.From))
	}
	var publishOpts []process.PublishOption
	if r.To != "" {
		publishOpts = append(publishOpts, process.ToQueue(r.To))
	}
	if r.ClearOnOverflow {
		publishOpts = append(publishOpts, process.ClearOnOverflow())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := r.Proc.Consume(consumeOpts...)
		if err != nil {
			return err
		}
		if err := r.Proc.Publish(msg, publishOpts...); err != nil {
			return err
		}
	}
}

// StateWriter mirrors every consumed message into a shared state
// attribute, so other processes observe the latest status snapshot.
type StateWriter struct {
	Proc *process.Process
	Attr string
}

// NewStateWriter creates a state writer targeting the "status"
// attribute.
func NewStateWriter(proc *process.Process) *StateWriter {
	return &StateWriter{Proc: proc, Attr: "status"}
}

// Run consumes snapshots until ctx is cancelled between messages.
// Fails immediately if the process carries no shared state view.
func (w *StateWriter) Run(ctx context.Context) error {
	if w.Proc.Shared() == nil {
		return fmt.Errorf("procbus: process %q has no shared state", w.Proc.Name())
	}
	w.Proc.Log().Info("state writer started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := w.Proc.Consume(process.ClearAllMessages())
		if err != nil {
			return err
		}
		if err := w.Proc.Shared().Set(w.Attr, msg); err != nil {
			return err
		}
	}
}

// Register binds the built-in workers to their factory names: "stub",
// "relay" and "state_writer".
func Register(m *pipeline.Manager) {
	m.Register("stub", func(proc *process.Process) (pipeline.Worker, error) {
		return NewStub(proc), nil
	})
	m.Register("relay", func(proc *process.Process) (pipeline.Worker, error) {
		return NewRelay(proc), nil
	})
	m.Register("state_writer", func(proc *process.Process) (pipeline.Worker, error) {
		return NewStateWriter(proc), nil
	})
}
