package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Source locations are always attached:
// report failures are diagnosed from logs alone, the tenant never sees detail.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
