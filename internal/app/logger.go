package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog.Logger. JSON output is meant for
// aggregated deployments, text for a local terminal.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
