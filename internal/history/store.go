// Package history keeps a durable log of rounds in SQLite.
//
// The live game state stays in memory (internal/store); this log only
// records what happened so operators can look at stats and per-day
// leaderboards. It implements bot.Recorder.
package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/robalobadob/guessbot/internal/game"
)

// DefaultLeaderboardLimit is used when a non-positive limit is passed.
const DefaultLeaderboardLimit = 20

// ErrUnknownRound is returned when a guess refers to a round never recorded.
var ErrUnknownRound = errors.New("unknown round")

// Store is the SQLite-backed history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// RoundStarted inserts a row for a new round.
func (s *Store) RoundStarted(ctx context.Context, chatID int64, sess *game.Session) error {
	started := sess.StartedAt
	if started.IsZero() {
		started = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (id, chat_id, secret, attempts, started_at) VALUES (?,?,?,?,?)`,
		sess.ID, chatID, sess.SecretNumber, sess.Attempts, started.UTC().Format(time.RFC3339),
	)
	return err
}

// GuessEvaluated stores the attempt counter and, on the first win, the win time.
// Once a round is won its row is frozen; presses on a stale keypad still hit
// the live session but no longer change the recorded attempts.
func (s *Store) GuessEvaluated(ctx context.Context, chatID int64, o game.Outcome) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE rounds
        SET attempts = CASE WHEN won_at IS NULL THEN ? ELSE attempts END,
            won_at = CASE WHEN ? AND won_at IS NULL THEN ? ELSE won_at END
        WHERE id = ? AND chat_id = ?`,
		o.Attempts, o.Won(), s.now().UTC().Format(time.RFC3339), o.RoundID, chatID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUnknownRound
	}
	return nil
}

// Stats is an aggregate over every recorded round.
type Stats struct {
	Rounds       int     `json:"rounds"`
	Wins         int     `json:"wins"`
	Chats        int     `json:"chats"`
	AvgAttempts  float64 `json:"avgAttempts"` // over won rounds
	BestAttempts int     `json:"bestAttempts"`
}

// Stats returns totals across all chats.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COUNT(won_at),
               COUNT(DISTINCT chat_id),
               COALESCE(AVG(CASE WHEN won_at IS NOT NULL THEN attempts END), 0),
               COALESCE(MIN(CASE WHEN won_at IS NOT NULL THEN attempts END), 0)
        FROM rounds`,
	).Scan(&st.Rounds, &st.Wins, &st.Chats, &st.AvgAttempts, &st.BestAttempts)
	return st, err
}

// LBRow is one leaderboard entry.
type LBRow struct {
	ChatID   int64  `json:"chatId"`
	RoundID  string `json:"roundId"`
	Attempts int    `json:"attempts"`
	WonAt    string `json:"wonAt"`
}

// Leaderboard returns the won rounds of date (YYYY-MM-DD, UTC), fewest
// attempts first, earlier wins breaking ties.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT chat_id, id, attempts, won_at
        FROM rounds
        WHERE won_at IS NOT NULL AND substr(won_at, 1, 10) = ?
        ORDER BY attempts ASC, won_at ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.ChatID, &r.RoundID, &r.Attempts, &r.WonAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Round is one history row. Secret is only reported for won rounds, so an
// active round's number never leaks.
type Round struct {
	ID        string `json:"id"`
	Attempts  int    `json:"attempts"`
	StartedAt string `json:"startedAt"`
	WonAt     string `json:"wonAt,omitempty"`
	Secret    *int   `json:"secret,omitempty"`
}

// RoundsForChat returns a chat's most recent rounds, newest first.
func (s *Store) RoundsForChat(ctx context.Context, chatID int64, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, secret, attempts, started_at, COALESCE(won_at, '')
        FROM rounds
        WHERE chat_id = ?
        ORDER BY started_at DESC, rowid DESC
        LIMIT ?`, chatID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		var secret int
		if err := rows.Scan(&r.ID, &secret, &r.Attempts, &r.StartedAt, &r.WonAt); err != nil {
			return nil, err
		}
		if r.WonAt != "" {
			r.Secret = &secret
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
