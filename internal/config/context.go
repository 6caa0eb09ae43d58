package config

import (
	"context"
	"log/slog"
)

var currentConfig *Config

type loggerKey struct{}

// SetCurrent stores the loaded configuration for access by commands.
func SetCurrent(cfg *Config) {
	currentConfig = cfg
}

// Current returns the most recently loaded configuration, or nil.
func Current() *Config {
	return currentConfig
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the context.
// Returns a discard logger when none is stored.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
