// Package procbus runs pipelines of worker processes connected by
// pre-wired message channels.
//
// Example usage:
//
//	cfg := procbus.DefaultConfig()
//	cfg.Processes = []procbus.ProcessConfig{
//	    {Name: "camera", Publish: []string{"video"}},
//	    {Name: "encoder", Consume: []string{"video"}},
//	}
//	m, err := procbus.NewManager(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m.Register("camera", newCamera)
//	m.Register("encoder", newEncoder)
//	if err := procbus.Run(context.Background(), m); err != nil {
//	    log.Fatal(err)
//	}
package procbus

import (
	"context"

	"github.com/bft-labs/procbus/pkg/pipeline"
	"github.com/bft-labs/procbus/pkg/process"
	"github.com/bft-labs/procbus/pkg/queue"
)

// Config declares a pipeline: channel capacities and processes.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = pipeline.Config

// ProcessConfig declares one worker and its channel bindings.
type ProcessConfig = pipeline.ProcessConfig

// Manager wires the declared queues and supervises the workers.
type Manager = pipeline.Manager

// Worker is the run loop of a single pipeline process.
type Worker = pipeline.Worker

// Factory builds a worker around its messaging core.
type Factory = pipeline.Factory

// Process is the messaging core handed to every worker: publish,
// consume, correlated request/response, shared state, and teardown.
type Process = process.Process

// SharedState is the fixed-shape attribute store shared by all
// processes of a pipeline.
type SharedState = process.SharedState

// Queue is a bounded FIFO message queue.
type Queue = queue.Queue

// DefaultConfig returns a Config with default values and no processes.
func DefaultConfig() Config {
	return pipeline.DefaultConfig()
}

// NewManager creates a manager for the given pipeline configuration.
func NewManager(cfg Config, opts ...pipeline.ManagerOption) (*Manager, error) {
	return pipeline.NewManager(cfg, opts...)
}

// NewQueue creates a bounded queue, for wiring processes by hand
// outside a managed pipeline.
func NewQueue(capacity int) *Queue {
	return queue.New(capacity)
}

// Run starts the manager and blocks until the context is cancelled,
// then stops the pipeline. Worker factories must be registered before
// calling Run.
func Run(ctx context.Context, m *Manager) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return m.Stop()
}
