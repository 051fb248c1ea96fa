package process

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/procbus/pkg/log"
)

// MaxPendingReplies caps the number of unclaimed personal replies a
// process buffers before a waiting ConsumeFromSystemQueue fails with
// ErrReplyOverflow.
const MaxPendingReplies = 50

// PersonalMessage wraps a payload with a correlation id and the name of
// the originating process. It implements request/response over channels
// that are otherwise broadcast-oriented: the responder copies the id into
// its reply and addresses it to the origin's system queue, and the id is
// the only demultiplexing key on the shared inbound channel.
type PersonalMessage struct {
	ID      string
	Origin  string
	Payload interface{}
}

// PublishPersonal publishes message wrapped as a PersonalMessage with a
// freshly generated correlation id and returns the id. The requester
// later claims the matching reply with ConsumeFromSystemQueue.
// Channel resolution and overflow clearing behave exactly as in Publish.
func (p *Process) PublishPersonal(message interface{}, opts ...PublishOption) (string, error) {
	var o publishOptions
	for _, opt := range opts {
		opt(&o)
	}

	name, err := p.resolvePublish(o.queueName)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	p.enqueue(PersonalMessage{ID: id, Origin: p.name, Payload: message}, name, o.clearOnOverflow)
	return id, nil
}

// PublishToSystemQueue wraps payload as a PersonalMessage bearing
// correlationID and enqueues it on targetProcess's system queue.
// Delivery is fire-and-forget with the ordinary per-channel FIFO
// guarantee; there is no acknowledgment.
func (p *Process) PublishToSystemQueue(correlationID, targetProcess string, payload interface{}) error {
	q, ok := p.system[targetProcess]
	if !ok {
		p.log.Error("no system queue for target process", log.String("target", targetProcess))
		return fmt.Errorf("%w: %q", ErrNoSystemQueue, targetProcess)
	}

	q.Put(PersonalMessage{ID: correlationID, Origin: p.name, Payload: payload})
	return nil
}

// ConsumeFromSystemQueue returns the payload of the reply bearing
// correlationID.
//
// If the reply already sits in the pending buffer it is claimed
// immediately. Otherwise the call blocks on the process's own system
// queue, buffering every mismatched reply under its own id so a later
// wait can claim it. Before each blocking receive the pending buffer is
// checked against MaxPendingReplies; exceeding the cap fails the wait
// with ErrReplyOverflow.
//
// There is no timeout: a reply that never arrives blocks forever. Use
// ConsumeFromSystemQueueTimeout for a bounded wait.
func (p *Process) ConsumeFromSystemQueue(correlationID string) (interface{}, error) {
	return p.consumeFromSystemQueue(correlationID, 0)
}

// ConsumeFromSystemQueueTimeout behaves like ConsumeFromSystemQueue but
// fails with ErrReplyTimeout if the reply does not arrive within timeout.
func (p *Process) ConsumeFromSystemQueueTimeout(correlationID string, timeout time.Duration) (interface{}, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", ErrReplyTimeout)
	}
	return p.consumeFromSystemQueue(correlationID, timeout)
}

func (p *Process) consumeFromSystemQueue(correlationID string, timeout time.Duration) (interface{}, error) {
	own, ok := p.system[p.name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSystemQueue, p.name)
	}

	if payload, claimed := p.claimPending(correlationID); claimed {
		return payload, nil
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if n := p.pendingLen(); n > MaxPendingReplies {
			return nil, fmt.Errorf("%w: %d unclaimed replies", ErrReplyOverflow, n)
		}

		var raw interface{}
		if timeout > 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return nil, ErrReplyTimeout
			}
			m, got := own.GetTimeout(remaining)
			if !got {
				return nil, ErrReplyTimeout
			}
			raw = m
		} else {
			raw = own.Get()
		}

		msg, isPersonal := raw.(PersonalMessage)
		if !isPersonal {
			p.log.Warn("discarding non-personal message on system queue")
			continue
		}

		if msg.ID == correlationID {
			return msg.Payload, nil
		}
		p.storePending(msg.ID, msg.Payload)
	}
}

// claimPending removes and returns the buffered payload for id, if any.
func (p *Process) claimPending(id string) (interface{}, bool) {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()

	payload, ok := p.pending[id]
	if ok {
		delete(p.pending, id)
	}
	return payload, ok
}

func (p *Process) storePending(id string, payload interface{}) {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	p.pending[id] = payload
}

func (p *Process) pendingLen() int {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	return len(p.pending)
}
