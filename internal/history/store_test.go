package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/guessbot/internal/game"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("first Open err: %v", err)
	}
	_ = st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatalf("second Open err: %v", err)
	}
	defer st.Close()

	var n int
	if err := st.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Fatalf("_migrations has %d rows, want 1", n)
	}
}

func TestRecordRound(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()
	st.now = func() time.Time { return at("2026-05-02T10:00:00Z") }

	sess := &game.Session{ID: "r1", SecretNumber: 4, Attempts: 1, StartedAt: at("2026-05-02T09:59:00Z")}
	if err := st.RoundStarted(ctx, 7, sess); err != nil {
		t.Fatalf("RoundStarted err: %v", err)
	}

	if err := st.GuessEvaluated(ctx, 7, game.Outcome{Kind: game.OutcomeRetry, RoundID: "r1", Attempts: 2}); err != nil {
		t.Fatalf("GuessEvaluated err: %v", err)
	}
	rounds, err := st.RoundsForChat(ctx, 7, 0)
	if err != nil {
		t.Fatalf("RoundsForChat err: %v", err)
	}
	if len(rounds) != 1 || rounds[0].Attempts != 2 || rounds[0].WonAt != "" || rounds[0].Secret != nil {
		t.Fatalf("unexpected active round %+v", rounds)
	}

	win := game.Outcome{Kind: game.OutcomeWin, RoundID: "r1", SecretNumber: 4, Attempts: 2}
	if err := st.GuessEvaluated(ctx, 7, win); err != nil {
		t.Fatalf("GuessEvaluated err: %v", err)
	}
	// A later repeat win keeps the first win time.
	st.now = func() time.Time { return at("2026-05-02T11:00:00Z") }
	_ = st.GuessEvaluated(ctx, 7, win)

	rounds, _ = st.RoundsForChat(ctx, 7, 0)
	r := rounds[0]
	if r.WonAt != "2026-05-02T10:00:00Z" || r.Secret == nil || *r.Secret != 4 {
		t.Fatalf("unexpected won round %+v", r)
	}
}

func TestWonRoundIgnoresLaterGuesses(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()
	st.now = func() time.Time { return at("2026-05-02T10:00:00Z") }

	if err := st.RoundStarted(ctx, 7, &game.Session{ID: "r1", SecretNumber: 4, Attempts: 1, StartedAt: at("2026-05-02T09:59:00Z")}); err != nil {
		t.Fatalf("RoundStarted err: %v", err)
	}
	if err := st.GuessEvaluated(ctx, 7, game.Outcome{Kind: game.OutcomeWin, RoundID: "r1", SecretNumber: 4, Attempts: 1}); err != nil {
		t.Fatalf("GuessEvaluated err: %v", err)
	}
	// Old keypads stay clickable, so the live session keeps counting.
	for n := 2; n <= 6; n++ {
		if err := st.GuessEvaluated(ctx, 7, game.Outcome{Kind: game.OutcomeRetry, RoundID: "r1", Attempts: n}); err != nil {
			t.Fatalf("GuessEvaluated err: %v", err)
		}
	}

	lb, err := st.Leaderboard(ctx, "2026-05-02", 0)
	if err != nil {
		t.Fatalf("Leaderboard err: %v", err)
	}
	if len(lb) != 1 || lb[0].Attempts != 1 {
		t.Fatalf("won round attempts changed after the win: %+v", lb)
	}
	stats, _ := st.Stats(ctx)
	if stats.BestAttempts != 1 || stats.AvgAttempts != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestGuessUnknownRound(t *testing.T) {
	st := openTest(t)
	err := st.GuessEvaluated(context.Background(), 1, game.Outcome{Kind: game.OutcomeRetry, RoundID: "nope", Attempts: 2})
	if !errors.Is(err, ErrUnknownRound) {
		t.Fatalf("expected ErrUnknownRound, got %v", err)
	}
}

func TestStatsAndLeaderboard(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	empty, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats err: %v", err)
	}
	if empty != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", empty)
	}

	play := func(chat int64, id string, attempts int, wonAt string) {
		t.Helper()
		if err := st.RoundStarted(ctx, chat, &game.Session{ID: id, SecretNumber: 1, Attempts: 1, StartedAt: at("2026-05-02T08:00:00Z")}); err != nil {
			t.Fatalf("RoundStarted err: %v", err)
		}
		if wonAt == "" {
			return
		}
		st.now = func() time.Time { return at(wonAt) }
		if err := st.GuessEvaluated(ctx, chat, game.Outcome{Kind: game.OutcomeWin, RoundID: id, Attempts: attempts}); err != nil {
			t.Fatalf("GuessEvaluated err: %v", err)
		}
	}
	play(1, "a", 3, "2026-05-02T09:00:00Z")
	play(2, "b", 1, "2026-05-02T12:00:00Z")
	play(3, "c", 3, "2026-05-02T08:30:00Z")
	play(1, "d", 2, "2026-05-03T08:00:00Z")
	play(4, "e", 0, "")

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats err: %v", err)
	}
	if stats.Rounds != 5 || stats.Wins != 4 || stats.Chats != 4 || stats.BestAttempts != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.AvgAttempts != 2.25 {
		t.Fatalf("AvgAttempts = %v, want 2.25", stats.AvgAttempts)
	}

	lb, err := st.Leaderboard(ctx, "2026-05-02", 0)
	if err != nil {
		t.Fatalf("Leaderboard err: %v", err)
	}
	var ids []string
	for _, r := range lb {
		ids = append(ids, r.RoundID)
	}
	if len(ids) != 3 || ids[0] != "b" || ids[1] != "c" || ids[2] != "a" {
		t.Fatalf("leaderboard order = %v, want [b c a]", ids)
	}

	lb, _ = st.Leaderboard(ctx, "2026-05-02", 1)
	if len(lb) != 1 {
		t.Fatalf("limit ignored: %d rows", len(lb))
	}
}

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("plus5", 5*3600)
	if got := DateKey(time.Date(2026, 1, 2, 2, 0, 0, 0, loc)); got != "2026-01-01" {
		t.Fatalf("DateKey = %s, want 2026-01-01", got)
	}
}
