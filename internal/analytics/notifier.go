package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"resumelift/internal/errors"
)

// Notifier delivers operator alerts. Like the Sink, it must never
// propagate failures into request handling.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NopNotifier discards alerts. Used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(_ context.Context, _ string) {}

// WebhookNotifier posts alerts to a chat-ops webhook as a JSON payload
// with a single "text" field, the incoming-webhook convention most chat
// tools accept.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *errors.Logger
}

// NewWebhookNotifier creates a notifier for the given webhook URL
func NewWebhookNotifier(url string, timeout time.Duration, logger *errors.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Notify implements Notifier. Delivery failures are logged and
// swallowed.
func (n *WebhookNotifier) Notify(ctx context.Context, message string) {
	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		n.logger.Warn("Failed to marshal webhook payload", "error", err.Error())
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("Failed to build webhook request", "error", err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("Failed to deliver operator alert", "error", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn("Operator alert webhook returned non-success status",
			"status", resp.StatusCode)
		return
	}

	n.logger.Info("Operator alert delivered", "status", resp.StatusCode)
}

// QuotaAlertMessage formats the standard quota exhaustion alert text
func QuotaAlertMessage(sessionID, detail string) string {
	return fmt.Sprintf("resumelift: model quota exhausted, serving fallback output (session %s): %s", sessionID, detail)
}
