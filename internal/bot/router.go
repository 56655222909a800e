// internal/bot/router.go
//
// Message routing for the guessing bot.
// Responsibilities:
//   - Map exact command tokens (/start, /info, /game, /help) to handlers;
//     anything else gets the default reply.
//   - Handle keypad selections: "/again" restarts the round, digits are
//     evaluated as guesses.
//   - Render replies through the messages package and hand them to a Sender.
//
// Notes:
//   - The router is transport-neutral; internal/telegram feeds it events.
//   - A failed send is returned to the caller but never undoes the session
//     change that preceded it.

package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/robalobadob/guessbot/internal/game"
	"github.com/robalobadob/guessbot/internal/messages"
)

// Command tokens, matched exactly and case-sensitively.
const (
	CmdStart = "/start"
	CmdInfo  = "/info"
	CmdGame  = "/game"
	CmdHelp  = "/help"
)

// Router dispatches inbound events to handlers.
type Router struct {
	engine   *game.Engine
	sender   Sender
	recorder Recorder
	fallback language.Tag
	commands map[string]func(ctx context.Context, m Message, tag language.Tag) error
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithRecorder attaches a round history recorder.
func WithRecorder(rec Recorder) RouterOption {
	return func(r *Router) { r.recorder = rec }
}

// WithFallbackLocale sets the locale used when a client language cannot be matched.
func WithFallbackLocale(tag language.Tag) RouterOption {
	return func(r *Router) { r.fallback = tag }
}

// NewRouter wires a router around engine and sender.
func NewRouter(engine *game.Engine, sender Sender, opts ...RouterOption) *Router {
	r := &Router{
		engine:   engine,
		sender:   sender,
		fallback: messages.Base(),
	}
	for _, o := range opts {
		o(r)
	}
	r.commands = map[string]func(context.Context, Message, language.Tag) error{
		CmdStart: r.handleStart,
		CmdInfo:  r.handleInfo,
		CmdGame:  r.handleGame,
		CmdHelp:  r.handleHelp,
	}
	return r
}

// Commands returns the command menu to register with the platform.
func (r *Router) Commands() []messages.Command {
	return messages.Commands(r.fallback)
}

// HandleMessage routes one text message.
func (r *Router) HandleMessage(ctx context.Context, m Message) error {
	tag := messages.Match(m.LanguageCode, r.fallback)
	h, ok := r.commands[m.Text]
	log.Debug().Int64("chat", m.ChatID).Str("cmd", m.Text).Bool("known", ok).Msg("message")
	if !ok {
		return r.say(ctx, m.ChatID, messages.Localize(tag, messages.KeyDefault, nil), nil)
	}
	return h(ctx, m, tag)
}

// HandleSelection routes one keypad button press.
func (r *Router) HandleSelection(ctx context.Context, s Selection) error {
	tag := messages.Match(s.LanguageCode, r.fallback)
	log.Debug().Int64("chat", s.ChatID).Str("data", s.Value).Msg("selection")

	if s.Value == messages.AgainPayload {
		return r.startRound(ctx, s.ChatID, tag)
	}

	out, err := r.engine.EvaluateGuess(ctx, s.ChatID, s.Value)
	if errors.Is(err, game.ErrNoActiveSession) {
		return r.say(ctx, s.ChatID, messages.Localize(tag, messages.KeyNoSession, nil), nil)
	}
	if err != nil {
		return err
	}
	r.recordGuess(ctx, s.ChatID, out)

	if out.Won() {
		text := messages.Localize(tag, messages.KeyWin, map[string]any{
			messages.ParamRandomNumber: out.SecretNumber,
			messages.ParamAttempts:     out.Attempts,
		})
		return r.say(ctx, s.ChatID, text, messages.AgainKeypad(tag))
	}
	text := messages.Localize(tag, messages.KeyWrongGuess, map[string]any{
		messages.ParamAttempts: out.Attempts,
	})
	return r.say(ctx, s.ChatID, text, messages.DigitKeypad())
}

func (r *Router) handleStart(ctx context.Context, m Message, tag language.Tag) error {
	return r.say(ctx, m.ChatID, messages.Localize(tag, messages.KeyStart, nil), nil)
}

func (r *Router) handleInfo(ctx context.Context, m Message, tag language.Tag) error {
	text := messages.Localize(tag, messages.KeyInfo, map[string]any{messages.ParamName: m.SenderName})
	return r.say(ctx, m.ChatID, text, nil)
}

func (r *Router) handleGame(ctx context.Context, m Message, tag language.Tag) error {
	return r.startRound(ctx, m.ChatID, tag)
}

func (r *Router) handleHelp(ctx context.Context, m Message, tag language.Tag) error {
	return r.say(ctx, m.ChatID, messages.Localize(tag, messages.KeyHelp, nil), nil)
}

// startRound announces the game, creates the session, then sends the keypad.
// The session is created even if the announcement fails to deliver.
func (r *Router) startRound(ctx context.Context, chatID int64, tag language.Tag) error {
	announceErr := r.say(ctx, chatID, messages.Localize(tag, messages.KeyGameStart, nil), nil)

	s, err := r.engine.StartRound(ctx, chatID)
	if err != nil {
		return errors.Join(announceErr, err)
	}
	log.Info().Int64("chat", chatID).Str("round", s.ID).Msg("round started")
	if r.recorder != nil {
		if err := r.recorder.RoundStarted(ctx, chatID, s); err != nil {
			log.Warn().Err(err).Int64("chat", chatID).Msg("record round start")
		}
	}

	promptErr := r.say(ctx, chatID, messages.Localize(tag, messages.KeyGuessPrompt, nil), messages.DigitKeypad())
	return errors.Join(announceErr, promptErr)
}

func (r *Router) recordGuess(ctx context.Context, chatID int64, out game.Outcome) {
	if out.Won() {
		log.Info().Int64("chat", chatID).Str("round", out.RoundID).Int("attempts", out.Attempts).Msg("round won")
	}
	if r.recorder == nil {
		return
	}
	if err := r.recorder.GuessEvaluated(ctx, chatID, out); err != nil {
		log.Warn().Err(err).Int64("chat", chatID).Msg("record guess")
	}
}

func (r *Router) say(ctx context.Context, chatID int64, text string, kp messages.Keypad) error {
	if err := r.sender.Send(ctx, Reply{ChatID: chatID, Text: text, Keypad: kp}); err != nil {
		log.Warn().Err(err).Int64("chat", chatID).Msg("send reply")
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}
