package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/realDragonium/mcwatch/logging"
)

// Webhook posts each message as JSON. The "content" field makes the body a
// valid Discord webhook payload; other receivers can use the rest.
type Webhook struct {
	URL    string
	Client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

type webhookPayload struct {
	Content string `json:"content"`
	Message
}

func (hook *Webhook) Notify(ctx context.Context, msg Message) error {
	data, err := json.Marshal(webhookPayload{Content: msg.Text, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(hook.Client).Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	logger := logging.Component("notify")
	logger.Debug().Str("id", msg.ID).Msg("webhook notification sent")
	return nil
}
