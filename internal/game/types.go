// internal/game/types.go
//
// Core type definitions for the guessing game.
// Defines:
//   - Session: state for the single active round of a chat.
//   - Outcome: result of evaluating one guess (win/retry).

package game

import "time"

// Secret numbers are drawn from [MinNumber, MaxNumber] inclusive.
const (
	MinNumber = 0
	MaxNumber = 9
)

// Session holds the state of the active round for one chat.
type Session struct {
	ID           string    // Round identifier (UUIDv7).
	SecretNumber int       // Number to guess, fixed for the life of the round.
	Attempts     int       // Starts at 1, incremented on each wrong guess.
	StartedAt    time.Time // UTC time the round was started.
}

// OutcomeKind classifies the result of a guess.
type OutcomeKind string

const (
	OutcomeWin   OutcomeKind = "win"
	OutcomeRetry OutcomeKind = "retry"
)

// Outcome is returned by Engine.EvaluateGuess.
// For a win SecretNumber and Attempts describe the finished round; for a
// retry Attempts is the counter value after the increment and SecretNumber
// is left zero.
type Outcome struct {
	Kind         OutcomeKind
	RoundID      string
	SecretNumber int
	Attempts     int
}

// Won reports whether the guess matched the secret number.
func (o Outcome) Won() bool { return o.Kind == OutcomeWin }
