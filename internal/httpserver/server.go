// internal/httpserver/server.go
//
// HTTP server wiring for the bot.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Telegram webhook endpoint (webhook mode only): POST /telegram/webhook/{secret}.
//   - Admin endpoints (require a JWT), mounted only when admin auth is configured:
//     /admin/stats, /admin/sessions, /admin/leaderboard, /admin/chats/{chatID}/rounds,
//     /admin/chats/{chatID}/session.
//
// Notes:
//   - History-backed endpoints answer 503 when history is disabled.
//   - The session endpoint never exposes the secret number of a live round.

package httpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guessbot/internal/config"
	"github.com/robalobadob/guessbot/internal/game"
	"github.com/robalobadob/guessbot/internal/history"
)

// WebhookPath is the prefix under which Telegram delivers updates in
// webhook mode. The full route carries the webhook secret, see WebhookRoute.
const WebhookPath = "/telegram/webhook"

// WebhookRoute returns the path registered with Telegram for secret.
func WebhookRoute(secret string) string { return WebhookPath + "/" + secret }

// SessionReader reads live sessions without mutating them.
type SessionReader interface {
	Session(ctx context.Context, chatID int64) (*game.Session, error)
}

// SessionCounter reports how many chats have a live session.
type SessionCounter interface {
	Len(ctx context.Context) int
}

// History is the read side of the round history.
type History interface {
	Stats(ctx context.Context) (history.Stats, error)
	Leaderboard(ctx context.Context, date string, limit int) ([]history.LBRow, error)
	RoundsForChat(ctx context.Context, chatID int64, limit int) ([]history.Round, error)
}

// Options bundles the server's collaborators. Nil History or Live disables
// the matching routes. Webhook is mounted only together with a non-empty
// WebhookSecret.
type Options struct {
	Sessions      SessionReader
	Live          SessionCounter
	History       History
	Webhook       http.Handler
	WebhookSecret string
	Admin         config.AdminConfig
}

// Server bundles router and collaborators.
type Server struct {
	r        *chi.Mux
	sessions SessionReader
	live     SessionCounter
	history  History
	admin    config.AdminConfig
	now      func() time.Time
	srv      *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		sessions: opts.Sessions,
		live:     opts.Live,
		history:  opts.History,
		admin:    opts.Admin,
		now:      time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"guessbot","endpoints":["/health","POST /telegram/webhook/{secret}","/admin/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	if opts.Webhook != nil && opts.WebhookSecret != "" {
		s.r.With(requireWebhookSecret(opts.WebhookSecret)).
			Method(http.MethodPost, WebhookPath+"/{secret}", opts.Webhook)
	}

	if s.admin.Enabled() {
		s.mountAdmin()
	}

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Start serves HTTP on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()
	log.Info().Str("addr", addr).Msg("http server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requireWebhookSecret rejects deliveries whose path token is not secret.
func requireWebhookSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := chi.URLParam(r, "secret")
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				log.Warn().Str("ip", r.RemoteAddr).Msg("webhook delivery with bad secret")
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ ADMIN --------------------------------------

// mountAdmin registers /admin/login and the gated read-only routes.
func (s *Server) mountAdmin() {
	s.r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth())
			r.Get("/stats", s.handleStats)
			r.Get("/sessions", s.handleSessions)
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/chats/{chatID}/rounds", s.handleChatRounds)
			r.Get("/chats/{chatID}/session", s.handleChatSession)
		})
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, `{"error":"history_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	st, err := s.history.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load stats")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}

// handleSessions reports the live session count held in memory.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.live == nil {
		http.Error(w, `{"error":"sessions_unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"live": s.live.Len(r.Context())})
}

// handleLeaderboard serves GET /admin/leaderboard?date=YYYY-MM-DD&limit=N.
// date defaults to today (UTC).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, `{"error":"history_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = history.DateKey(s.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, `{"error":"bad_date"}`, http.StatusBadRequest)
		return
	}
	limit, ok := queryInt(r, "limit", history.DefaultLeaderboardLimit)
	if !ok {
		http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
		return
	}
	rows, err := s.history.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("load leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "rows": rows})
}

func (s *Server) handleChatRounds(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, `{"error":"history_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	chatID, ok := chatParam(r)
	if !ok {
		http.Error(w, `{"error":"bad_chat_id"}`, http.StatusBadRequest)
		return
	}
	limit, ok := queryInt(r, "limit", 50)
	if !ok {
		http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
		return
	}
	rounds, err := s.history.RoundsForChat(r.Context(), chatID, limit)
	if err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("load rounds")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rounds)
}

// sessionRes is the public view of a live session.
type sessionRes struct {
	ChatID    int64     `json:"chatId"`
	RoundID   string    `json:"roundId"`
	Attempts  int       `json:"attempts"`
	StartedAt time.Time `json:"startedAt"`
}

func (s *Server) handleChatSession(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatParam(r)
	if !ok {
		http.Error(w, `{"error":"bad_chat_id"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Session(r.Context(), chatID)
	if errors.Is(err, game.ErrNoActiveSession) {
		http.Error(w, `{"error":"no_active_session"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"lookup_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sessionRes{
		ChatID:    chatID,
		RoundID:   sess.ID,
		Attempts:  sess.Attempts,
		StartedAt: sess.StartedAt,
	})
}

// ------------------------------- small util --------------------------------

func chatParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	return id, err == nil
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
