// SPDX-License-Identifier: Apache-2.0

// Package logging provides the process-wide slog logger used across the
// substrate-core packages.
package logging

import (
	"log/slog"
	"os"

	"github.com/semi-e090/substrate-core/internal/conf"
)

// Default returns the process-wide logger.
//
// This may grow more logic in the future (e.g. handler selection based on
// environment) without changing call sites.
func Default() *slog.Logger {
	return slog.Default()
}

// FromConfig builds a logger honoring cfg's level and format, matching the
// pack's "logging" config section convention.
func FromConfig(cfg conf.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LevelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// Log is the package-level logger, captured from slog.Default() when the
// package is initialised. Components built without a logger fall back to
// slog.Default() themselves rather than to Log.
var Log = Default()

// Trace logs at debug level with a "trace" marker attribute, since log/slog
// has no dedicated trace level.
func Trace(log *slog.Logger, msg string, args ...any) {
	log.Debug(msg, append([]any{"trace", true}, args...)...)
}
