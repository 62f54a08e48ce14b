// Package notify delivers chat messages to users.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"diet-agent/internal/logger"
)

// Notifier sends an HTML-formatted message to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

const telegramAPI = "https://api.telegram.org"

type Telegram struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewTelegram(token string) *Telegram {
	return &Telegram{
		baseURL: telegramAPI,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// The request URL carries the bot token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, out.Description)
	}
	return nil
}

// Log writes messages to the log instead of delivering them. Used when no
// bot token is configured.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Send(_ context.Context, chatID int64, text string) error {
	l.log.Info("Notification", "chat_id", chatID, "text", text)
	return nil
}
