package process

import (
	"context"
	"time"

	"github.com/bft-labs/procbus/pkg/log"
	"github.com/bft-labs/procbus/pkg/notify"
)

// heartbeatTimeout bounds a single detached notification attempt.
const heartbeatTimeout = 10 * time.Second

// Heartbeat reports liveness to the configured watcher on a detached
// goroutine. The caller never waits for delivery and is not affected by
// its outcome; failures are logged at debug level and otherwise
// swallowed. This is the only place the core offloads work to
// fire-and-forget concurrency.
func (p *Process) Heartbeat(text string) {
	msg := notify.Message{
		Process: p.name,
		Text:    text,
		SentAt:  time.Now().UTC(),
	}

	notifier := p.notifier
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
		defer cancel()

		if err := notifier.Notify(ctx, msg); err != nil {
			p.log.Debug("heartbeat delivery failed", log.Err(err))
		}
	}()
}
