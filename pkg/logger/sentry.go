package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig enables error reporting to Sentry.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT"`
	Release     string `env:"SENTRY_RELEASE"`
}

// NewWithSentry returns a logger writing both to stdout and to Sentry.
// Without a DSN, or when the SDK fails to initialise, it behaves like New.
func NewWithSentry(cfg Config, sc SentryConfig, extractors ...Extractor) *slog.Logger {
	stdout := baseHandler(cfg)
	if sc.DSN == "" {
		return slog.New(withExtractors(stdout, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         sc.DSN,
		Environment: sc.Environment,
		Release:     sc.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("sentry init failed", slog.String("error", err.Error()))
		return slog.New(withExtractors(stdout, extractors...))
	}

	sh := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	return slog.New(withExtractors(fanout{stdout, sh}, extractors...))
}

// FlushSentry waits up to timeout for buffered Sentry events.
// Safe to call when Sentry was never initialised.
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}
