package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Text output by default, JSON when
// LOG_FORMAT=json; every record carries the service attribute so the web and
// worker processes can share one log stream.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "retailpro"))
}
