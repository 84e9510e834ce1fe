package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger writing to stdout. The level can be
// raised to debug with RECIBO_LOG_DEBUG=true.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("RECIBO_LOG_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
