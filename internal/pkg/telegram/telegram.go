// Package telegram posts messages to a Telegram group through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

const defaultBaseURL = "https://api.telegram.org"

type Config struct {
	BotToken string
	ChatID   string
	// Topics maps a notification topic to a forum thread id of the group.
	Topics  map[notification.Topic]string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type sendMessageRequest struct {
	ChatID          string `json:"chat_id"`
	Text            string `json:"text"`
	ParseMode       string `json:"parse_mode"`
	MessageThreadID int64  `json:"message_thread_id,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send implements notification.Transport.
func (c *Client) Send(ctx context.Context, msg notification.Message) error {
	// Skip sending if the bot is not configured
	if c.cfg.BotToken == "" || c.cfg.ChatID == "" {
		slog.Warn("Telegram not configured, skipping message", "topic", msg.Topic)
		return nil
	}

	payload := sendMessageRequest{
		ChatID:    c.cfg.ChatID,
		Text:      msg.Text,
		ParseMode: "Markdown",
	}
	if thread, ok := c.cfg.Topics[msg.Topic]; ok && thread != "" {
		id, err := strconv.ParseInt(thread, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid telegram topic id %q: %w", thread, err)
		}
		payload.MessageThreadID = id
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.cfg.BaseURL, c.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("telegram returned status %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !result.OK {
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, result.Description)
	}
	return nil
}
