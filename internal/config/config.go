// Package config loads the board's runtime configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction is the BOARD_ENV value that enables production checks.
const EnvProduction = "production"

// Config captures runtime configuration values for the board server and CLI.
type Config struct {
	Addr               string
	Env                string
	UpstreamURL        string
	UpstreamTimeout    time.Duration
	Locale             string
	BannerDismissAfter time.Duration
	LogLevel           string
	CSRFKey            []byte
	CSRFKeyGenerated   bool // no key was configured; a random one is used
	TrustedOrigins     []string
	RateLimitPerSecond int
	SlowRequestMs      int
	SlowUpstreamMs     int
	ResendAPIKey       string
	ResendFrom         string
}

// Load reads .env (when present) and environment variables into Config and validates it.
func Load() (*Config, error) {
	// .env is optional when the environment already carries the variables.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without reading .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:               getEnv("BOARD_ADDR", ":8080"),
		Env:                getEnv("BOARD_ENV", "development"),
		UpstreamURL:        getEnv("UPSTREAM_URL", "http://localhost:8000"),
		UpstreamTimeout:    getDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second),
		Locale:             getEnv("BOARD_LOCALE", "en"),
		BannerDismissAfter: getDurationEnv("BANNER_DISMISS_AFTER", 5*time.Second),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		TrustedOrigins:     splitAndTrim(getEnv("BOARD_TRUSTED_ORIGINS", "localhost:8080,127.0.0.1:8080")),
		RateLimitPerSecond: getIntEnv("BOARD_RATE_LIMIT", 10),
		SlowRequestMs:      getIntEnv("BOARD_SLOW_REQUEST_MS", 200),
		SlowUpstreamMs:     getIntEnv("BOARD_SLOW_UPSTREAM_MS", 300),
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		ResendFrom:         getEnv("RESEND_FROM", "Activity Board <noreply@example.org>"),
	}

	key, generated, err := loadCSRFKey(os.Getenv("BOARD_CSRF_KEY"), cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	cfg.CSRFKey = key
	cfg.CSRFKeyGenerated = generated

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the board runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// validate checks the loaded values.
func (c *Config) validate() error {
	u, err := url.Parse(c.UpstreamURL)
	if err != nil {
		return fmt.Errorf("config: UPSTREAM_URL invalid (%q): %w", c.UpstreamURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: UPSTREAM_URL invalid (%q): scheme must be http or https and host is required", c.UpstreamURL)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("config: UPSTREAM_TIMEOUT must be positive")
	}
	if c.BannerDismissAfter <= 0 {
		return fmt.Errorf("config: BANNER_DISMISS_AFTER must be positive")
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("config: BOARD_RATE_LIMIT must be positive")
	}
	if c.Locale == "" {
		return fmt.Errorf("config: BOARD_LOCALE is required")
	}
	return nil
}

// loadCSRFKey decodes the hex-encoded 32 byte CSRF secret.
// In production the key must be set; elsewhere a random key is generated per startup.
func loadCSRFKey(keyHex string, production bool) ([]byte, bool, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, false, fmt.Errorf("config: BOARD_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, false, nil
	}
	if production {
		return nil, false, fmt.Errorf("config: BOARD_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("config: generate CSRF key: %w", err)
	}
	return key, true, nil
}

// NewLogger builds the process logger for the configured level.
func NewLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
