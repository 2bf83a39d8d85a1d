package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/realDragonium/mcwatch/logging"
)

const DefaultHTTPTimeout = 10 * time.Second

// OneBot posts messages to a chat group through the OneBot v11 HTTP API
// action send_group_msg.
type OneBot struct {
	BaseURL     string
	GroupID     int64
	AccessToken string
	Client      *http.Client
}

func NewOneBot(baseURL string, groupID int64, accessToken string) *OneBot {
	return &OneBot{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		GroupID:     groupID,
		AccessToken: accessToken,
		Client:      &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

type oneBotGroupMsg struct {
	GroupID    int64  `json:"group_id"`
	Message    string `json:"message"`
	AutoEscape bool   `json:"auto_escape"`
}

type oneBotResponse struct {
	Status  string `json:"status"`
	RetCode int    `json:"retcode"`
	Message string `json:"message"`
}

func (bot *OneBot) Notify(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(oneBotGroupMsg{
		GroupID:    bot.GroupID,
		Message:    msg.Text,
		AutoEscape: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal group message: %w", err)
	}

	url := strings.TrimRight(bot.BaseURL, "/") + "/send_group_msg"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create onebot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bot.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+bot.AccessToken)
	}

	resp, err := httpClient(bot.Client).Do(req)
	if err != nil {
		return fmt.Errorf("onebot request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("onebot returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result oneBotResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("onebot returned invalid json: %w", err)
	}
	if result.Status == "failed" || result.RetCode != 0 {
		return fmt.Errorf("onebot send_group_msg failed: retcode %d %s", result.RetCode, result.Message)
	}

	logger := logging.Component("notify")
	logger.Info().Int64("group", bot.GroupID).Str("id", msg.ID).Msg("group message sent")
	return nil
}

func httpClient(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}
