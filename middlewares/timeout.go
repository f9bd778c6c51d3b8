package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/logger"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutBody is written when the deadline passed before anything was sent.
const TimeoutBody = "<h1>Gateway Timeout</h1><p>The request took too long to process.</p>"

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutLogger sets the logger used to report timeouts.
func WithTimeoutLogger(l *slog.Logger) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// Timeout returns middleware that attaches a deadline to the request context.
// Database calls and other blocking work observe it through the context. When
// the handler returns after the deadline without having written a response,
// a 504 page is sent.
func Timeout(timeout time.Duration, opts ...TimeoutOption) func(http.Handler) http.Handler {
	cfg := &TimeoutConfig{
		Timeout: timeout,
		Logger:  logger.NewNope(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
			defer cancel()

			rw, ok := w.(*httpx.ResponseWriter)
			if !ok {
				rw = httpx.NewResponseWriter(w)
			}

			next.ServeHTTP(rw, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !rw.Written() {
				err := &TimeoutError{Duration: cfg.Timeout}
				cfg.Logger.WarnContext(ctx, "request timeout", slog.String("error", err.Error()))
				_ = httpx.HTML(http.StatusGatewayTimeout, TimeoutBody).Send(rw)
			}
		})
	}
}
