package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns the ledger's structured JSON logger. The level comes from
// LOG_LEVEL (debug, info, warn, error); anything else means info. Every
// record carries the service name so aggregated logs stay attributable.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: levelFromEnv(),
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler).With("service", "skillmint")
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
