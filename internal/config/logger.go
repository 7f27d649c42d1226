package config

import (
	"io"
	"log/slog"
)

// NewLogger builds a slog logger from the logging settings and installs it
// as the default. Unknown levels fall back to info.
func (s *Settings) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch s.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
