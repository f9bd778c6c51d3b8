package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Extractor pulls a single attribute out of a context.
type Extractor func(ctx context.Context) (slog.Attr, bool)

// Config controls the output of loggers built by New.
type Config struct {
	Output io.Writer
	Level  slog.Level
	// Text switches the stdout handler from JSON to logfmt-like text.
	Text bool
}

// New returns a logger that writes to cfg.Output (stdout by default)
// and decorates each record with the attributes produced by extractors.
func New(cfg Config, extractors ...Extractor) *slog.Logger {
	return slog.New(withExtractors(baseHandler(cfg), extractors...))
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func baseHandler(cfg Config) slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Text {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}
