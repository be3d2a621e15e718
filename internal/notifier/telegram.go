package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTelegramAPI is the Bot API host.
const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramBot talks to the Telegram Bot API.
type TelegramBot struct {
	BotToken string
	// AllowedChatID restricts the bot to one chat when non-zero.
	AllowedChatID int64
	client        *resty.Client
	pollTimeout   int
}

// NewTelegramBot creates a bot with optional proxy support. An empty apiBase
// uses DefaultTelegramAPI.
func NewTelegramBot(botToken string, allowedChatID int64, apiBase, proxyURL string) *TelegramBot {
	if apiBase == "" {
		apiBase = DefaultTelegramAPI
	}
	client := resty.New()
	client.SetBaseURL(apiBase)
	client.SetTimeout(40 * time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &TelegramBot{
		BotToken:      botToken,
		AllowedChatID: allowedChatID,
		client:        client,
		pollTimeout:   30,
	}
}

type apiResult struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send sends a message to chatID.
func (t *TelegramBot) Send(ctx context.Context, chatID int64, text string) error {
	var result apiResult
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id":    strconv.FormatInt(chatID, 10),
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.BotToken))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.StatusCode() != 200 || !result.OK {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
