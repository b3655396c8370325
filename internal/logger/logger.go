// Package logger configures structured logging and crash reports for
// Vanessa.
package logger

import (
	"io"
	"log/slog"
)

// Setup installs a text slog handler on w as the default logger. Debug
// output is enabled when verbose is set.
func Setup(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}
