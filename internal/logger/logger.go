package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alkime/mixgraph/internal/config"
	"golang.org/x/term"
)

// Format selects the slog handler.
type Format int

const (
	JSON Format = iota
	Text
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// FormatFor picks Text for a terminal and JSON for pipes and files.
func FormatFor(w io.Writer) Format {
	if IsTerminal(w) {
		return Text
	}

	return JSON
}

// Level derives the log level: debug in development or when LOG_LEVEL asks
// for it, info otherwise.
func Level(cfg *config.Config) slog.Level {
	switch {
	case cfg.Env == config.EnvDevelopment, cfg.LogLevel == "debug":
		return slog.LevelDebug
	case cfg.LogLevel == "warn":
		return slog.LevelWarn
	case cfg.LogLevel == "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup configures structured logging to w and installs it as the default
// logger.
func Setup(cfg *config.Config, w io.Writer, format Format) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	opts := &slog.HandlerOptions{
		Level: Level(cfg),
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if format == Text {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// Output opens LOG_FILE for appending. Without one, logs are discarded so a
// full-screen UI stays clean.
func Output(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.LogFile == "" {
		return io.Discard, func() error { return nil }, nil
	}

	//nolint:gosec // user-chosen log path
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
	}

	return f, f.Close, nil
}
