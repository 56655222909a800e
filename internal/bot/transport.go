package bot

import (
	"context"

	"github.com/robalobadob/guessbot/internal/game"
	"github.com/robalobadob/guessbot/internal/messages"
)

// Message is an inbound text message.
type Message struct {
	ChatID       int64
	Text         string
	SenderName   string // display name (first name on Telegram)
	LanguageCode string // client language, may be empty
}

// Selection is an inbound keypad button press.
type Selection struct {
	ChatID       int64
	Value        string // "0".."9" or messages.AgainPayload
	LanguageCode string
}

// Reply is one outbound message, optionally with a keypad attached.
type Reply struct {
	ChatID int64
	Text   string
	Keypad messages.Keypad
}

// Sender delivers replies to the messaging platform.
type Sender interface {
	Send(ctx context.Context, r Reply) error
}

// Recorder observes round activity, e.g. to keep a history.
// Errors are logged by the router and never affect the reply.
type Recorder interface {
	RoundStarted(ctx context.Context, chatID int64, s *game.Session) error
	GuessEvaluated(ctx context.Context, chatID int64, o game.Outcome) error
}

// Handler consumes inbound events; Router implements it.
type Handler interface {
	HandleMessage(ctx context.Context, m Message) error
	HandleSelection(ctx context.Context, s Selection) error
}
