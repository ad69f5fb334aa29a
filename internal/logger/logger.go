package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process-wide JSON logger writing to stderr.
func New(level string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: Level(level)})
	return slog.New(h)
}

// Level maps a config string to a slog level. Matching is
// case-insensitive and unknown values fall back to info.
func Level(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
