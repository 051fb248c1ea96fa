// Package notify delivers liveness heartbeats from pipeline processes to
// an external watcher.
//
// Processes call Heartbeat on their messaging core, which invokes the
// configured Notifier on a detached goroutine. The caller never waits for
// delivery and never observes failures; a watcher that misses heartbeats
// is expected to react on its own side.
package notify
