package queue

import "time"

// DefaultCapacity is used when New is called with a non-positive capacity.
const DefaultCapacity = 1000

// Queue is a bounded FIFO message queue safe for concurrent use across
// goroutines. It is the in-process equivalent of the host-supplied queues
// a pipeline wires between processes: one writer side, one reader side,
// FIFO order, blocking semantics on both ends.
//
// The queue never closes. Teardown drains it with bounded waits instead;
// a reader blocked in Get is only released by a message or by host-level
// termination of its goroutine.
type Queue struct {
	ch chan interface{}
}

// New creates a queue with the given capacity.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan interface{}, capacity)}
}

// Put appends a message, blocking while the queue is full.
func (q *Queue) Put(msg interface{}) {
	q.ch <- msg
}

// TryPut appends a message without blocking.
// Returns false if the queue is full.
func (q *Queue) TryPut(msg interface{}) bool {
	select {
	case q.ch <- msg:
		return true
	default:
		return false
	}
}

// Get removes and returns the oldest message, blocking while the queue
// is empty.
func (q *Queue) Get() interface{} {
	return <-q.ch
}

// GetTimeout removes and returns the oldest message, waiting at most d.
// Returns false if no message arrived in time.
func (q *Queue) GetTimeout(d time.Duration) (interface{}, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	case <-time.After(d):
		return nil, false
	}
}

// TryGet removes and returns the oldest message without blocking.
// Returns false if the queue is empty.
func (q *Queue) TryGet() (interface{}, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	default:
		return nil, false
	}
}

// DropOldest discards the oldest message, if any.
// Returns true if a message was discarded.
func (q *Queue) DropOldest() bool {
	select {
	case <-q.ch:
		return true
	default:
		return false
	}
}

// Len returns the number of queued messages.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

// Full reports whether the queue is at capacity.
// The answer is advisory: a concurrent reader or writer can change it
// before the caller acts on it.
func (q *Queue) Full() bool { return len(q.ch) == cap(q.ch) }

// Empty reports whether the queue holds no messages.
func (q *Queue) Empty() bool { return len(q.ch) == 0 }
