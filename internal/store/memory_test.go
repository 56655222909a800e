package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/robalobadob/guessbot/internal/game"
	"github.com/robalobadob/guessbot/internal/store"
)

func TestMemoryGetMissing(t *testing.T) {
	st := store.NewMemoryStore()

	_, err := st.Get(context.Background(), 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, game.ErrNoActiveSession) {
		t.Fatalf("ErrNotFound should match game.ErrNoActiveSession, got %v", err)
	}
}

func TestMemorySetOverwrites(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	if err := st.Set(ctx, 1, &game.Session{ID: "a", SecretNumber: 3, Attempts: 5}); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	if err := st.Set(ctx, 1, &game.Session{ID: "b", SecretNumber: 7, Attempts: 1}); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	got, err := st.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.ID != "b" || got.SecretNumber != 7 || got.Attempts != 1 {
		t.Fatalf("unexpected session after overwrite: %+v", got)
	}
	if n := st.Len(ctx); n != 1 {
		t.Fatalf("Len = %d, want 1", n)
	}
}

func TestMemorySetNil(t *testing.T) {
	st := store.NewMemoryStore()
	if err := st.Set(context.Background(), 1, nil); err == nil {
		t.Fatal("expected error for nil session")
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	_ = st.Set(ctx, 1, &game.Session{ID: "a", Attempts: 1})

	got, _ := st.Get(ctx, 1)
	got.Attempts = 99

	again, _ := st.Get(ctx, 1)
	if again.Attempts != 1 {
		t.Fatalf("stored session mutated through Get copy: %+v", again)
	}
}

func TestMemoryUpdate(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	if err := st.Update(ctx, 9, func(*game.Session) error { return nil }); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing chat, got %v", err)
	}

	_ = st.Set(ctx, 9, &game.Session{ID: "a", Attempts: 1})
	if err := st.Update(ctx, 9, func(s *game.Session) error { s.Attempts++; return nil }); err != nil {
		t.Fatalf("Update err: %v", err)
	}

	boom := errors.New("boom")
	err := st.Update(ctx, 9, func(s *game.Session) error { s.Attempts = 100; return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	got, _ := st.Get(ctx, 9)
	if got.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2 (failed update must not apply)", got.Attempts)
	}
}

func TestMemoryUpdateConcurrent(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	_ = st.Set(ctx, 1, &game.Session{ID: "a", Attempts: 1})

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = st.Update(ctx, 1, func(s *game.Session) error { s.Attempts++; return nil })
		}()
	}
	wg.Wait()

	got, _ := st.Get(ctx, 1)
	if got.Attempts != n+1 {
		t.Fatalf("Attempts = %d, want %d", got.Attempts, n+1)
	}
}

func TestMemoryChatsAreIndependent(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	_ = st.Set(ctx, 1, &game.Session{ID: "a", Attempts: 1})

	if _, err := st.Get(ctx, 2); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("chat 2 should have no session, got %v", err)
	}
}
