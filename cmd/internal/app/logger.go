package app

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the app-wide logger type (slog).
type Logger = *slog.Logger

// NewLogger creates a structured logger. Format "json" is the production
// default; "pretty" renders a colorized single-line format for local
// development terminals.
func NewLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(level),
		AddSource: true,
	}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "pretty":
		h = newPrettyHandler(os.Stdout, opts, isTerminal(os.Stdout))
	default:
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(h)
	slog.SetDefault(log)
	return log
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
