package logger

import (
	"log/slog"
	"os"
)

func NewLogger(debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}
	if debug {
		opts.Level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, opts)

	logger := slog.New(handler)

	slog.SetDefault(logger)
	return logger
}
