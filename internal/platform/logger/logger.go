package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON structured logger writing to stdout. Level defaults to
// info; set VEIL_LOG_LEVEL=debug for verbose output.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("VEIL_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
