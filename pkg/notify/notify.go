package notify

import (
	"context"
	"time"
)

// Message is a liveness notification sent to an external watcher.
type Message struct {
	// Process is the name of the process reporting liveness.
	Process string `json:"process"`

	// Text is a free-form status line supplied by the process.
	Text string `json:"text"`

	// Hostname identifies the machine the pipeline runs on.
	Hostname string `json:"hostname"`

	// SentAt is the UTC time the heartbeat was produced.
	SentAt time.Time `json:"sent_at"`
}

// Notifier delivers liveness notifications to a watcher.
// Delivery is best-effort; callers fire notifications from detached
// goroutines and ignore the result.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Noop discards all notifications.
type Noop struct{}

// Notify discards the message.
func (Noop) Notify(ctx context.Context, msg Message) error { return nil }
