// Package process implements the messaging core shared by all pipeline
// workers.
//
// A worker owns zero or more named consume channels (one inbound queue
// each), zero or more named publish channels (fan-out to one or more
// outbound queues each), a shared state view, and optionally a
// system-queue mapping for correlated request/response ("personal")
// messaging. All of these are wired externally (see pkg/pipeline) and
// handed to New; the core never creates or destroys queues.
//
// # Channel resolution
//
// Publish and Consume accept an optional channel name. When omitted, the
// process must have exactly one channel on that side; a missing or
// ambiguous channel is logged at error level and returned as a sentinel
// error without any effect. This favors availability over strictness: a
// worker with a misaddressed publish keeps running.
//
// # Personal messaging
//
// PublishPersonal wraps a payload with a fresh correlation id;
// a responder replies through PublishToSystemQueue with the same id, and
// ConsumeFromSystemQueue claims the reply on the requester's system
// queue, buffering out-of-order replies up to MaxPendingReplies.
//
// # Lifecycle
//
// FreeResources is the idempotent teardown: it stops the optional stack
// monitor, runs the worker's close hook, and drains the declared
// queues-to-clear with bounded waits.
package process
