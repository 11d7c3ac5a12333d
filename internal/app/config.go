package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"pairchat/internal/domain"
)

// Config holds runtime options for the relay server.
type Config struct {
	Addr            string            // listen address, e.g. :8080
	Env             string            // development or production
	LogLevel        zerolog.Level     // minimum log level
	CipherMode      domain.CipherMode // parity or sealed
	MailboxLimit    int               // max undelivered messages kept per identity
	ShutdownTimeout time.Duration     // grace period for in-flight requests
}

// Load reads configuration from the environment. Files in envFiles (or .env
// when none are given) are loaded first if present; variables already set in
// the environment win.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		Addr: getEnv("ADDR", ":8080"),
		Env:  getEnv("ENV", "development"),
	}

	var err error
	if cfg.LogLevel, err = zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.CipherMode, err = domain.ParseCipherMode(getEnv("CIPHER_MODE", string(domain.ModeParity))); err != nil {
		return Config{}, fmt.Errorf("CIPHER_MODE: %w", err)
	}
	if cfg.MailboxLimit, err = strconv.Atoi(getEnv("MAILBOX_LIMIT", "256")); err != nil || cfg.MailboxLimit <= 0 {
		return Config{}, fmt.Errorf("MAILBOX_LIMIT: want a positive integer, got %q", os.Getenv("MAILBOX_LIMIT"))
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// NewLogger builds the process logger: human-readable console output in
// development, JSON lines otherwise.
func NewLogger(cfg Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(cfg.LogLevel).With().Timestamp().Logger()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
