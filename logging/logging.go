// Package logging configures the process-wide structured logger. All log
// output goes to stderr (or an injected writer) so it never mixes with
// benchmark tables or exports on stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config controls the process-wide logger.
type Config struct {
	// Debug lowers the threshold to debug level.
	Debug bool
	// Writer receives log lines. Defaults to stderr.
	Writer io.Writer
}

// Setup installs the default slog logger and returns it. Warnings and errors
// are always shown; --debug turns on the spawn-level detail.
func Setup(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
