// internal/telegram/client.go
//
// Telegram transport for the bot.
// Responsibilities:
//   - Authenticate with the Bot API (NewBotAPI calls getMe).
//   - Deliver bot.Reply values, turning keypads into inline keyboards.
//   - Register the client-side command menu once at startup.
//   - Feed inbound updates to a bot.Handler, via long polling or webhook.
//
// Notes:
//   - Polling dispatches updates one at a time, in arrival order.
//   - Callback queries are always answered so the client stops its spinner.

package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guessbot/internal/bot"
	"github.com/robalobadob/guessbot/internal/messages"
)

// ErrEmptyToken is returned by New when no token is configured.
var ErrEmptyToken = errors.New("telegram: empty bot token")

// api is the subset of *tgbotapi.BotAPI the client uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// Client wraps the Bot API and implements bot.Sender.
type Client struct {
	api         api
	username    string
	pollTimeout int
}

// New authenticates with token. An invalid token is reported here, which
// callers treat as a fatal startup condition.
func New(token string, pollTimeout int) (*Client, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Client{api: b, username: b.Self.UserName, pollTimeout: pollTimeout}, nil
}

// newWithAPI is used by tests to inject a fake API.
func newWithAPI(a api) *Client {
	return &Client{api: a, pollTimeout: 60}
}

// Username returns the bot's @username as reported by getMe.
func (c *Client) Username() string { return c.username }

// Send delivers one reply.
func (c *Client) Send(ctx context.Context, r bot.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(messageConfig(r)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// RegisterCommands publishes the command menu (setMyCommands).
func (c *Client) RegisterCommands(cmds []messages.Command) error {
	botCmds := make([]tgbotapi.BotCommand, 0, len(cmds))
	for _, cmd := range cmds {
		botCmds = append(botCmds, tgbotapi.BotCommand{Command: cmd.Name, Description: cmd.Description})
	}
	if _, err := c.api.Request(tgbotapi.NewSetMyCommands(botCmds...)); err != nil {
		return fmt.Errorf("telegram set commands: %w", err)
	}
	return nil
}

// Poll long-polls for updates and dispatches them to h until ctx is done.
func (c *Client) Poll(ctx context.Context, h bot.Handler) error {
	// A leftover webhook makes getUpdates fail with 409.
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn().Err(err).Msg("delete webhook")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	updates := c.api.GetUpdatesChan(u)
	log.Info().Str("bot", c.username).Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			c.dispatch(ctx, h, upd)
		}
	}
}

// SetWebhook registers url as the update endpoint.
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("telegram webhook url: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("telegram set webhook: %w", err)
	}
	log.Info().Str("url", url).Msg("webhook registered")
	return nil
}

// WebhookHandler serves Telegram webhook deliveries.
func (c *Client) WebhookHandler(h bot.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upd, err := c.api.HandleUpdate(r)
		if err != nil {
			http.Error(w, `{"error":"bad_update"}`, http.StatusBadRequest)
			return
		}
		c.dispatch(r.Context(), h, *upd)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

// dispatch hands one update to h. Handler errors are per-event: logged, never fatal.
func (c *Client) dispatch(ctx context.Context, h bot.Handler, upd tgbotapi.Update) {
	ev := toEvent(upd)
	switch ev.kind {
	case eventMessage:
		if err := h.HandleMessage(ctx, ev.message); err != nil {
			log.Error().Err(err).Int("update", upd.UpdateID).Msg("handle message")
		}
	case eventSelection:
		if _, err := c.api.Request(tgbotapi.NewCallback(ev.callbackID, "")); err != nil {
			log.Warn().Err(err).Str("callback", ev.callbackID).Msg("answer callback")
		}
		if err := h.HandleSelection(ctx, ev.selection); err != nil {
			log.Error().Err(err).Int("update", upd.UpdateID).Msg("handle selection")
		}
	default:
		log.Debug().Int("update", upd.UpdateID).Msg("ignored update")
	}
}
