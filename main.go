package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guessbot/internal/bot"
	"github.com/robalobadob/guessbot/internal/config"
	"github.com/robalobadob/guessbot/internal/game"
	"github.com/robalobadob/guessbot/internal/history"
	"github.com/robalobadob/guessbot/internal/httpserver"
	"github.com/robalobadob/guessbot/internal/store"
	"github.com/robalobadob/guessbot/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := telegram.New(cfg.Token, cfg.PollTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to telegram")
	}

	sessions := store.NewMemoryStore()
	engine := game.NewEngine(sessions)
	routerOpts := []bot.RouterOption{bot.WithFallbackLocale(cfg.DefaultLocale)}
	srvOpts := httpserver.Options{Sessions: engine, Live: sessions, Admin: cfg.Admin}

	if cfg.HistoryEnabled() {
		hist, err := history.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open history")
		}
		defer hist.Close()
		routerOpts = append(routerOpts, bot.WithRecorder(hist))
		srvOpts.History = hist
		log.Info().Str("path", cfg.DBPath).Msg("round history enabled")
	}

	router := bot.NewRouter(engine, client, routerOpts...)
	if err := client.RegisterCommands(router.Commands()); err != nil {
		log.Warn().Err(err).Msg("failed to register bot commands")
	}

	if cfg.Mode == config.ModeWebhook {
		srvOpts.Webhook = client.WebhookHandler(router)
		srvOpts.WebhookSecret = cfg.WebhookSecret
	}
	srv := httpserver.New(srvOpts)

	httpErr := make(chan error, 1)
	go func() { httpErr <- srv.Start(ctx, cfg.Addr) }()

	log.Info().Str("bot", client.Username()).Str("mode", string(cfg.Mode)).Str("addr", cfg.Addr).Msg("starting guessbot")

	switch cfg.Mode {
	case config.ModeWebhook:
		if err := client.SetWebhook(strings.TrimSuffix(cfg.WebhookURL, "/") + httpserver.WebhookRoute(cfg.WebhookSecret)); err != nil {
			log.Fatal().Err(err).Msg("failed to register webhook")
		}
	default:
		go func() {
			if err := client.Poll(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("polling stopped")
			}
			stop()
		}()
	}

	if err := <-httpErr; err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("shutdown complete")
}
