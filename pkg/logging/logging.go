// Package logging configures structured logging with log/slog.
//
// Usage:
//
//	logging.Setup("info", "pretty")  // colored tint handler
//	logging.Setup("debug", "json")   // machine-readable JSON handler
//
// The pretty format is meant for terminals; JSON for log shippers.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger with the given level and format.
// Unknown values fall back to info and pretty.
func Setup(level, format string) {
	slog.SetDefault(slog.New(newHandler(parseLevel(level), format)))
}

func newHandler(level slog.Level, format string) slog.Handler {
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
