package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	telegramBaseURL = "https://api.telegram.org"
	telegramTimeout = 10 * time.Second
)

// TelegramNotifier delivers alert messages to a Telegram chat.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramNotifier creates the notifier.
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramBaseURL,
		client:   &http.Client{Timeout: telegramTimeout},
	}
}

// NewTelegramNotifierWithBaseURL creates a notifier against a custom base
// URL, used by tests.
func NewTelegramNotifierWithBaseURL(botToken, chatID, baseURL string) *TelegramNotifier {
	n := NewTelegramNotifier(botToken, chatID)
	n.baseURL = baseURL
	return n
}

// Send posts one Markdown message. A non-200 response is an error; the
// caller decides whether and how to retry.
func (t *TelegramNotifier) Send(ctx context.Context, message string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	payload := map[string]string{
		"chat_id":    t.chatID,
		"text":       message,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal telegram payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send telegram message")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}
