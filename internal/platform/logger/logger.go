package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout. Debug level is
// opt-in; everything the audit debug mirror emits goes through it.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
