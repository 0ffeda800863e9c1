// Package telegram implements notify.Sender on top of the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/crewdesk/crewdesk-api/internal/notify"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/redact"
)

// DefaultAPIEndpoint is the Bot API URL template; the two verbs receive the
// bot token and the method name.
const DefaultAPIEndpoint = tgbotapi.APIEndpoint

// Client sends messages with a bot token supplied per call, so one Client
// serves every owner.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ notify.Sender = (*Client)(nil)

// NewClient creates a Client. An empty endpoint selects DefaultAPIEndpoint and
// a nil httpClient selects http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "telegram_client")),
	}
}

// Send implements notify.Sender. It performs one sendMessage call in HTML
// parse mode. Chat IDs that parse as integers are sent as numeric IDs and
// anything else as a channel username.
func (c *Client) Send(ctx context.Context, botToken, chatID, text string) notify.Result {
	log := logger.FromContextOrDefault(ctx, c.logger)

	bot := &tgbotapi.BotAPI{
		Token:  botToken,
		Client: &contextClient{ctx: ctx, client: c.httpClient},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(c.endpoint)

	msg := newMessage(strings.TrimSpace(chatID), text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := bot.Send(msg); err != nil {
		reason := redact.BotToken(errorReason(err))
		log.Warn("telegram sendMessage failed", slog.String("error", reason))
		return notify.Failed(reason)
	}
	return notify.Sent
}

func newMessage(chatID, text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(chatID, text)
}

// errorReason prefers the description returned by the Bot API over the
// transport error text.
func errorReason(err error) string {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// contextClient binds outgoing Bot API requests to ctx, since the library
// builds its requests without one.
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c *contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}
