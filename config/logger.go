package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configures the global zerolog logger and tags it with the session.
func SetupLogger(cfg Config, w io.Writer, session string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
	case "console", "text":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	default:
		return fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}

	log.Logger = zerolog.New(w).With().Timestamp().Str("session", session).Logger()
	return nil
}
