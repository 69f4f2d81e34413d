package app

import (
	"io"
	"log/slog"
)

// NewLogger creates a slog.Logger writing to w. It does not touch the
// global logger. Unknown levels fall back to info and unknown formats to
// text.
func NewLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level

	switch levelStr {
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
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
