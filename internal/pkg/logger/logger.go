// Package logger provides the structured logger used across this
// module's boundary code (keylog.Watcher). Core operations
// (DecryptRecord, SplitRecords, ParseClientHello, ...) never log —
// logging is strictly a boundary concern, and library code never logs
// secret material.
package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Init sets up the default structured logger. level and format follow
// log/slog conventions (format is "json" or "text"; anything else falls
// back to text). Safe to call multiple times; only the first call takes
// effect.
func Init(level slog.Level, format string) {
	once.Do(func() {
		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		if format == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		defaultLogger = slog.New(handler)
	})
}

// Get returns the default logger, initializing it with sensible
// defaults (info level, text format) if Init was never called.
func Get() *slog.Logger {
	Init(slog.LevelInfo, "text")
	return defaultLogger
}
