package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/bft-labs/procbus/pkg/log"
)

const heartbeatEndpoint = "/v1/heartbeat"

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPNotifier implements Notifier by posting JSON heartbeats to a
// watcher service.
type HTTPNotifier struct {
	client   HTTPClient
	url      string
	authKey  string
	hostname string
	logger   log.Logger
}

// NewHTTPNotifier creates a notifier that posts to serviceURL.
// authKey may be empty if the watcher requires no authentication.
func NewHTTPNotifier(client HTTPClient, serviceURL, authKey string, logger log.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		client:   client,
		url:      serviceURL + heartbeatEndpoint,
		authKey:  authKey,
		hostname: hostname(),
		logger:   logger,
	}
}

// Notify posts the heartbeat to the watcher.
func (n *HTTPNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.Hostname == "" {
		msg.Hostname = n.hostname
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal heartbeat: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if n.authKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.authKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	n.logger.Debug("heartbeat delivered", log.String("process", msg.Process))
	return nil
}

// hostname returns the current hostname.
func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// Ensure HTTPNotifier implements Notifier.
var _ Notifier = (*HTTPNotifier)(nil)
