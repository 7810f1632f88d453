package telegram

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ResearchAgent/internal/ports"
)

// MaxMessageLength is the Telegram limit for one text message.
const MaxMessageLength = 4096

const truncationMarker = "\n..."

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   int64
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	api *tgbotapi.BotAPI
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty endpoint
// uses the public Bot API; it must contain two %s verbs (token, method).
func NewNotifier(botToken string, chatID int64, endpoint string, client *http.Client) *Notifier {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		endpoint: endpoint,
		client:   client,
	}
}

// PublishDigest posts the digest as plain text, truncated to the Telegram
// message limit.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == 0 {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	api, err := n.bot()
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, Truncate(digest, MaxMessageLength))
	msg.DisableWebPagePreview = true
	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (n *Notifier) bot() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.api != nil {
		return n.api, nil
	}
	api, err := tgbotapi.NewBotAPIWithClient(n.botToken, n.endpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	n.api = api
	return api, nil
}

// Truncate cuts text to at most limit runes, marking the cut.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	keep := limit - len([]rune(truncationMarker))
	if keep <= 0 {
		return string(runes[:limit])
	}
	return string(runes[:keep]) + truncationMarker
}
