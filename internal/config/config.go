// Package config loads the bot's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/robalobadob/guessbot/internal/messages"
)

// ErrMissingToken is returned when TELEGRAM_BOT_TOKEN is unset.
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is required")

// Mode selects how updates are received.
type Mode string

const (
	ModePolling Mode = "polling"
	ModeWebhook Mode = "webhook"
)

// HistoryOff disables the SQLite history when used as DB_PATH.
const HistoryOff = "off"

// Config aggregates all settings.
type Config struct {
	Token         string
	LogLevel      zerolog.Level
	Mode          Mode
	WebhookURL    string
	WebhookSecret string
	Addr          string
	DBPath        string // empty when history is disabled
	DefaultLocale language.Tag
	PollTimeout   int
	Admin         AdminConfig
}

// AdminConfig describes the JWT-protected admin API.
type AdminConfig struct {
	JWTSecret    string
	PasswordHash string
	TokenTTL     time.Duration
}

// Enabled reports whether both the signing secret and password hash are set.
func (a AdminConfig) Enabled() bool {
	return a.JWTSecret != "" && a.PasswordHash != ""
}

// HistoryEnabled reports whether round history is persisted.
func (c *Config) HistoryEnabled() bool { return c.DBPath != "" }

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if token == "" {
		return nil, ErrMissingToken
	}

	level, err := zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL value: %w", err)
	}

	mode := Mode(strings.ToLower(getEnvOrDefault("BOT_MODE", string(ModePolling))))
	if mode != ModePolling && mode != ModeWebhook {
		return nil, fmt.Errorf("invalid BOT_MODE value %q: want polling or webhook", mode)
	}

	webhookURL := strings.TrimSpace(os.Getenv("WEBHOOK_URL"))
	if mode == ModeWebhook && webhookURL == "" {
		return nil, errors.New("WEBHOOK_URL is required in webhook mode")
	}

	webhookSecret := strings.TrimSpace(os.Getenv("WEBHOOK_SECRET"))
	if mode == ModeWebhook && webhookSecret == "" {
		return nil, errors.New("WEBHOOK_SECRET is required in webhook mode")
	}
	if webhookSecret != "" && !validSecret(webhookSecret) {
		return nil, errors.New("invalid WEBHOOK_SECRET value: want 1-256 chars of A-Z, a-z, 0-9, _ or -")
	}

	addr, err := parseAddr(getEnvOrDefault("PORT", "5175"))
	if err != nil {
		return nil, err
	}

	dbPath := getEnvOrDefault("DB_PATH", "./data/guessbot.db")
	if strings.EqualFold(dbPath, HistoryOff) {
		dbPath = ""
	}

	locale, ok := messages.Parse(getEnvOrDefault("DEFAULT_LOCALE", "ru"))
	if !ok {
		return nil, fmt.Errorf("invalid DEFAULT_LOCALE value %q", os.Getenv("DEFAULT_LOCALE"))
	}

	pollTimeout, err := parseIntEnv("POLL_TIMEOUT", 60)
	if err != nil {
		return nil, err
	}
	if pollTimeout < 0 {
		return nil, fmt.Errorf("invalid POLL_TIMEOUT value %d", pollTimeout)
	}

	ttlHours, err := parseIntEnv("JWT_EXPIRES_HOURS", 12)
	if err != nil {
		return nil, err
	}
	if ttlHours <= 0 {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_HOURS value %d", ttlHours)
	}

	return &Config{
		Token:         token,
		LogLevel:      level,
		Mode:          mode,
		WebhookURL:    webhookURL,
		WebhookSecret: webhookSecret,
		Addr:          addr,
		DBPath:        dbPath,
		DefaultLocale: locale,
		PollTimeout:   pollTimeout,
		Admin: AdminConfig{
			JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
			PasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
			TokenTTL:     time.Duration(ttlHours) * time.Hour,
		},
	}, nil
}

// parseAddr accepts "8080", ":8080" or "127.0.0.1:8080".
func parseAddr(port string) (string, error) {
	if strings.Contains(port, ":") {
		return port, nil
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid PORT value %q", port)
	}
	return ":" + port, nil
}

// validSecret keeps the webhook secret safe to embed in a URL path.
func validSecret(s string) bool {
	if len(s) > 256 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
