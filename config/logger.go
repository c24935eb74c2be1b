package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs the application logger. JSON to stdout in
// production, console writer otherwise. Level comes from LOG_LEVEL.
func NewLogger(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	var out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if cfg.Environment == "production" {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("app", "cyberapp-manager").Logger()
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
