// internal/game/engine.go
//
// Core engine for the per-chat number-guessing round.
// Responsibilities:
//   - Start rounds: pick a secret number in [0,9], reset attempts to 1.
//   - Evaluate guesses: win leaves the session untouched, anything else
//     increments the attempt counter in place.
//
// Notes:
//   - Sessions live in a SessionStore keyed by chat ID; the engine owns no
//     global state, so several engines can coexist (e.g. in tests).
//   - A round is never closed. Winning keeps the session, and the next
//     StartRound overwrites it.
package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoActiveSession is returned when a guess arrives for a chat that has
// not started a round.
var ErrNoActiveSession = errors.New("no active session")

// SessionStore is the persistence the engine needs.
// Get and Update must return an error matching ErrNoActiveSession (via
// errors.Is) when the chat has no session.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Set(ctx context.Context, chatID int64, s *Session) error
	// Update runs fn against the stored session as one atomic
	// read-modify-write.
	Update(ctx context.Context, chatID int64, fn func(*Session) error) error
}

// Engine runs rounds against a SessionStore.
type Engine struct {
	store SessionStore
	src   Source
	now   func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSource overrides the random source (tests use a fixed one).
func WithSource(src Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithClock overrides the clock used for Session.StartedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine constructs an engine over st. The default source is crypto/rand.
func NewEngine(st SessionStore, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		src:   CryptoSource{},
		now:   time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// StartRound creates a fresh session for chatID, replacing any previous one.
func (e *Engine) StartRound(ctx context.Context, chatID int64) (*Session, error) {
	s := &Session{
		ID:           uuid.Must(uuid.NewV7()).String(),
		SecretNumber: MinNumber + e.src.Intn(MaxNumber-MinNumber+1),
		Attempts:     1,
		StartedAt:    e.now().UTC(),
	}
	if err := e.store.Set(ctx, chatID, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	cp := *s
	return &cp, nil
}

// EvaluateGuess checks guessText against the chat's secret number.
//
// State transitions:
//   - No session → ErrNoActiveSession, nothing stored.
//   - Match → OutcomeWin, session unchanged.
//   - Otherwise (including non-numeric text) → Attempts+1, OutcomeRetry.
func (e *Engine) EvaluateGuess(ctx context.Context, chatID int64, guessText string) (Outcome, error) {
	guess, ok := parseGuess(guessText)

	var out Outcome
	err := e.store.Update(ctx, chatID, func(s *Session) error {
		if ok && guess == s.SecretNumber {
			out = Outcome{Kind: OutcomeWin, RoundID: s.ID, SecretNumber: s.SecretNumber, Attempts: s.Attempts}
			return nil
		}
		s.Attempts++
		out = Outcome{Kind: OutcomeRetry, RoundID: s.ID, Attempts: s.Attempts}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return Outcome{}, ErrNoActiveSession
		}
		return Outcome{}, fmt.Errorf("evaluate guess: %w", err)
	}
	return out, nil
}

// Session returns a copy of the chat's current session without touching it.
func (e *Engine) Session(ctx context.Context, chatID int64) (*Session, error) {
	s, err := e.store.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	return s, nil
}

// parseGuess accepts a trimmed base-10 integer; anything else never matches.
func parseGuess(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return n, true
}
