package process

import (
	"time"

	"github.com/bft-labs/procbus/pkg/log"
	"github.com/bft-labs/procbus/pkg/queue"
)

// drainPopTimeout bounds each pop while draining a queue during teardown.
const drainPopTimeout = 2 * time.Second

// FreeResources releases everything the process holds: stops the stack
// monitor if one was started, runs the close hook registered with
// SetCloseHook, then drains the declared queues. Safe to call more than
// once; the monitor stop and the close hook run exactly once, and
// draining an already-empty channel set is a no-op.
func (p *Process) FreeResources() {
	if p.monitor != nil {
		p.monitor.Stop()
	}

	p.closeOnce.Do(func() {
		p.closeMu.Lock()
		fn := p.closeFn
		p.closeMu.Unlock()
		if fn != nil {
			fn()
		}
	})

	p.ClearQueues()
}

// ClearQueues drains every channel listed in the queues-to-clear set.
// For a consume channel the inbound queue is drained; for a publish
// channel every fan-out destination is. The drain is best-effort with
// respect to concurrent publishers.
func (p *Process) ClearQueues() {
	if len(p.queuesToClear) == 0 {
		return
	}

	p.log.Info("clearing queues", log.Any("queues", p.queuesToClear))
	for _, name := range p.queuesToClear {
		p.clearQueue(name)
	}
}

func (p *Process) clearQueue(name string) {
	if q, ok := p.consume[name]; ok {
		drain(q)
		return
	}
	if qs, ok := p.publish[name]; ok {
		for _, q := range qs {
			drain(q)
		}
	}
}

// drain pops with a bounded wait until the queue is observed empty.
func drain(q *queue.Queue) {
	for !q.Empty() {
		if _, ok := q.GetTimeout(drainPopTimeout); !ok {
			return
		}
	}
}
