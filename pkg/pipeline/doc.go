// Package pipeline wires processes into a running pipeline.
//
// A Config declares the processes and their channel bindings; the
// Manager builds the queues (one inbound queue per channel and consumer,
// fan-out lists on every publisher, one system queue per process),
// constructs each worker through its registered factory, and supervises
// the run: one goroutine per worker, a lifecycle state machine guarding
// Start/Stop, and guaranteed FreeResources when a worker exits.
//
// The messaging core in pkg/process never creates queues itself; this
// package is the collaborator that owns their lifetime.
package pipeline
