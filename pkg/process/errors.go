package process

import "errors"

// Errors returned by the messaging core. All are checkable with errors.Is.
//
// The first group covers usage faults: the call is logged at error level,
// performs nothing, and returns the sentinel so the caller can tell a
// dropped call from a delivered one. The second group covers configuration
// faults and the reply-buffer overflow.
var (
	// ErrNoPublishQueues is returned by Publish when the process has no
	// publish queues at all.
	ErrNoPublishQueues = errors.New("procbus: process has no queues to write to")

	// ErrNoConsumeQueues is returned by Consume and IsEmpty when the
	// process has no consume queues at all.
	ErrNoConsumeQueues = errors.New("procbus: process has no queues to read from")

	// ErrAmbiguousQueue is returned when a queue name is omitted but the
	// process has more than one queue on that side.
	ErrAmbiguousQueue = errors.New("procbus: more than one queue bound, specify a queue name")

	// ErrQueueNotFound is returned when a named queue is not part of the
	// process channel set.
	ErrQueueNotFound = errors.New("procbus: queue not found")

	// ErrQueueSelector is returned by IsFull when zero or both selector
	// sides are set.
	ErrQueueSelector = errors.New("procbus: exactly one of publish or consume queue must be selected")

	// ErrNoSystemQueue is returned when a personal message is addressed to
	// a process without a system queue, or when a process without one
	// waits for a reply.
	ErrNoSystemQueue = errors.New("procbus: no system queue for process")

	// ErrReplyOverflow is returned when the pending-reply buffer exceeds
	// MaxPendingReplies. A requester that never claims its replies is a
	// leak, not a transient condition, so the wait fails instead of
	// buffering further.
	ErrReplyOverflow = errors.New("procbus: pending reply buffer overflow")

	// ErrReplyTimeout is returned by ConsumeFromSystemQueueTimeout when
	// the reply did not arrive in time.
	ErrReplyTimeout = errors.New("procbus: timed out waiting for personal reply")

	// ErrUnknownAttribute is returned by SharedState accessors for names
	// outside the fixed attribute set.
	ErrUnknownAttribute = errors.New("procbus: unknown shared attribute")
)
