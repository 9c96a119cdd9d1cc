package utils

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger on stdout tagged with the service name.
// Development environments also get debug lines.
func NewLogger(service, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" || env == "development" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}
