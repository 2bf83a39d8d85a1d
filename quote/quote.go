// Package quote fetches a short line of text to decorate messages with.
package quote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultURL     = "https://v1.hitokoto.cn/?encode=text"
	DefaultTimeout = 2 * time.Second

	maxQuoteSize = 4 << 10
)

// Client reads a plain text quote. Callers treat every error as "no quote".
type Client struct {
	URL     string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		URL:     url,
		Timeout: timeout,
		HTTP:    &http.Client{},
	}
}

func (c *Client) Fetch(ctx context.Context) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create quote request: %w", err)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("quote service returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteSize))
	if err != nil {
		return "", fmt.Errorf("read quote: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}
