package process

import (
	"fmt"
	"sync"

	"github.com/bft-labs/procbus/pkg/log"
	"github.com/bft-labs/procbus/pkg/notify"
	"github.com/bft-labs/procbus/pkg/queue"
	"github.com/bft-labs/procbus/pkg/stackmon"
)

// Process is the messaging core of a single pipeline worker. It owns the
// worker's view of the channel set: named consume queues (one inbound
// queue each), named publish queues (fan-out to one or more outbound
// queues each), an optional system-queue mapping for personal messaging,
// and a shared state view.
//
// Queues are supplied at construction and never created or destroyed by
// the process; their lifetime belongs to whatever wires the pipeline.
// Worker implementations embed or hold a Process and drive it from their
// run loop.
type Process struct {
	name    string
	consume map[string]*queue.Queue
	publish map[string][]*queue.Queue
	system  map[string]*queue.Queue
	shared  *SharedState

	log      log.Logger
	notifier notify.Notifier
	monitor  *stackmon.Monitor

	queuesToClear []string

	closeMu   sync.Mutex
	closeFn   func()
	closeOnce sync.Once

	pendingMu sync.Mutex
	pending   map[string]interface{}
}

// New creates the messaging core for a worker named name.
//
// consume maps channel name to the worker's inbound queue; publish maps
// channel name to the ordered fan-out destinations. Either map may be nil
// or empty. shared may be nil for workers without cross-process state.
func New(name string, consume map[string]*queue.Queue, publish map[string][]*queue.Queue, shared *SharedState, opts ...Option) *Process {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Process{
		name:          name,
		consume:       copyConsume(consume),
		publish:       copyPublish(publish),
		system:        o.system,
		shared:        shared,
		log:           o.logger.Named(name),
		notifier:      o.notifier,
		queuesToClear: o.queuesToClear,
		pending:       make(map[string]interface{}),
	}

	if o.monitorCfg != nil {
		p.monitor = stackmon.New(*o.monitorCfg, p.log)
		p.monitor.Start()
	}

	return p
}

// Name returns the process name.
func (p *Process) Name() string { return p.name }

// Shared returns the shared state view, or nil if none was supplied.
func (p *Process) Shared() *SharedState { return p.shared }

// Log returns the process-scoped logger.
func (p *Process) Log() log.Logger { return p.log }

// PublishOption configures a single Publish or PublishPersonal call.
type PublishOption func(*publishOptions)

type publishOptions struct {
	queueName       string
	clearOnOverflow bool
}

// ToQueue addresses the publish to the named channel instead of the
// process default.
func ToQueue(name string) PublishOption {
	return func(o *publishOptions) {
		o.queueName = name
	}
}

// ClearOnOverflow discards the oldest queued messages on each fan-out
// destination until it is no longer full before enqueueing. The channel
// then behaves as a bounded latest-wins stream: the producer never
// blocks, consumers may lose stale entries.
func ClearOnOverflow() PublishOption {
	return func(o *publishOptions) {
		o.clearOnOverflow = true
	}
}

// ConsumeOption configures a single Consume call.
type ConsumeOption func(*consumeOptions)

type consumeOptions struct {
	queueName        string
	clearAllMessages bool
}

// FromQueue addresses the consume to the named channel instead of the
// process default.
func FromQueue(name string) ConsumeOption {
	return func(o *consumeOptions) {
		o.queueName = name
	}
}

// ClearAllMessages drains the channel after the blocking receive and
// returns only the last message observed. Use it on channels carrying
// superseding snapshots, where the most recent state wins.
func ClearAllMessages() ConsumeOption {
	return func(o *consumeOptions) {
		o.clearAllMessages = true
	}
}

// Publish delivers message to every queue bound to the resolved publish
// channel. With no explicit channel, the process must have exactly one
// publish channel.
//
// A missing or ambiguous channel is a usage fault: it is logged at error
// level and returned as a sentinel, and nothing is enqueued.
func (p *Process) Publish(message interface{}, opts ...PublishOption) error {
	var o publishOptions
	for _, opt := range opts {
		opt(&o)
	}

	name, err := p.resolvePublish(o.queueName)
	if err != nil {
		return err
	}

	p.enqueue(message, name, o.clearOnOverflow)
	return nil
}

// enqueue replicates message to every fan-out destination of channel name.
func (p *Process) enqueue(message interface{}, name string, clearOnOverflow bool) {
	for _, q := range p.publish[name] {
		if clearOnOverflow {
			for q.Full() {
				q.DropOldest()
			}
		}
		q.Put(message)
	}
}

// Consume blocks until a message is available on the resolved consume
// channel and returns it. With no explicit channel, the process must have
// exactly one consume channel.
//
// A missing or ambiguous channel is a usage fault: it is logged at error
// level and returned as a sentinel, without blocking.
func (p *Process) Consume(opts ...ConsumeOption) (interface{}, error) {
	var o consumeOptions
	for _, opt := range opts {
		opt(&o)
	}

	name, err := p.resolveConsume(o.queueName)
	if err != nil {
		return nil, err
	}

	q := p.consume[name]
	message := q.Get()

	if o.clearAllMessages {
		for {
			m, ok := q.TryGet()
			if !ok {
				break
			}
			message = m
		}
	}

	return message, nil
}

// HasConsumeQueue reports whether the process consumes from the named
// channel.
func (p *Process) HasConsumeQueue(name string) bool {
	_, ok := p.consume[name]
	return ok
}

// HasPublishQueue reports whether the process publishes to the named
// channel.
func (p *Process) HasPublishQueue(name string) bool {
	_, ok := p.publish[name]
	return ok
}

// QueueSelector names exactly one queue for a fullness probe, on either
// the publish or the consume side.
type QueueSelector struct {
	Publish string
	Consume string
}

// IsFull reports whether the selected queue is full. Selecting zero or
// both sides fails with ErrQueueSelector; an unknown name fails with
// ErrQueueNotFound. For a publish channel the probe is true if any
// fan-out destination is full: fullness is a property of the least
// available downstream consumer.
func (p *Process) IsFull(sel QueueSelector) (bool, error) {
	if (sel.Publish == "") == (sel.Consume == "") {
		return false, ErrQueueSelector
	}

	if sel.Consume != "" {
		q, ok := p.consume[sel.Consume]
		if !ok {
			return false, fmt.Errorf("%w: consume queue %q", ErrQueueNotFound, sel.Consume)
		}
		return q.Full(), nil
	}

	qs, ok := p.publish[sel.Publish]
	if !ok {
		return false, fmt.Errorf("%w: publish queue %q", ErrQueueNotFound, sel.Publish)
	}
	for _, q := range qs {
		if q.Full() {
			return true, nil
		}
	}
	return false, nil
}

// IsEmpty reports whether the named consume channel is empty. An empty
// name resolves to the process's only consume channel. Publish channels
// cannot be probed: emptiness is meaningless under fan-out.
func (p *Process) IsEmpty(queueName string) (bool, error) {
	if len(p.consume) == 0 {
		return false, ErrNoConsumeQueues
	}

	if queueName == "" {
		if len(p.consume) != 1 {
			return false, ErrAmbiguousQueue
		}
		for n := range p.consume {
			queueName = n
		}
	}

	q, ok := p.consume[queueName]
	if !ok {
		return false, fmt.Errorf("%w: consume queue %q", ErrQueueNotFound, queueName)
	}
	return q.Empty(), nil
}

// resolvePublish maps an optional channel name to a concrete publish
// channel, applying the default-channel rule.
func (p *Process) resolvePublish(name string) (string, error) {
	if len(p.publish) == 0 {
		p.log.Error("process has no queues to write to")
		return "", ErrNoPublishQueues
	}

	if name == "" {
		if len(p.publish) != 1 {
			p.log.Error("more than one write queue, specify a queue name")
			return "", ErrAmbiguousQueue
		}
		for n := range p.publish {
			return n, nil
		}
	}

	if _, ok := p.publish[name]; !ok {
		p.log.Error("unknown write queue", log.String("queue", name))
		return "", fmt.Errorf("%w: publish queue %q", ErrQueueNotFound, name)
	}
	return name, nil
}

// resolveConsume maps an optional channel name to a concrete consume
// channel, applying the default-channel rule.
func (p *Process) resolveConsume(name string) (string, error) {
	if len(p.consume) == 0 {
		p.log.Error("process has no queues to read from")
		return "", ErrNoConsumeQueues
	}

	if name == "" {
		if len(p.consume) != 1 {
			p.log.Error("more than one read queue, specify a queue name")
			return "", ErrAmbiguousQueue
		}
		for n := range p.consume {
			return n, nil
		}
	}

	if _, ok := p.consume[name]; !ok {
		p.log.Error("unknown read queue", log.String("queue", name))
		return "", fmt.Errorf("%w: consume queue %q", ErrQueueNotFound, name)
	}
	return name, nil
}

// SetCloseHook registers fn as the worker-specific resource release hook
// run once during FreeResources. Workers that hold sockets, codecs or
// similar register their cleanup here.
func (p *Process) SetCloseHook(fn func()) {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	p.closeFn = fn
}

// AddQueuesToClear appends channel names to the teardown drain set.
func (p *Process) AddQueuesToClear(names ...string) {
	p.queuesToClear = append(p.queuesToClear, names...)
}

// QueuesToClear returns the channel names drained during teardown.
func (p *Process) QueuesToClear() []string {
	return p.queuesToClear
}

func copyConsume(src map[string]*queue.Queue) map[string]*queue.Queue {
	dst := make(map[string]*queue.Queue, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyPublish(src map[string][]*queue.Queue) map[string][]*queue.Queue {
	dst := make(map[string][]*queue.Queue, len(src))
	for k, v := range src {
		dst[k] = append([]*queue.Queue(nil), v...)
	}
	return dst
}
