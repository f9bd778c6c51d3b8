package middlewares

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/logger"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverBody is written when a panic escapes before anything was sent.
const RecoverBody = "<h1>Internal Server Error</h1><p>Something went wrong. Please try again later.</p>"

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	Logger            *slog.Logger
	OnPanic           func(r *http.Request, pe *PanicError)
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// WithRecoverLogger sets the logger used to report panics.
func WithRecoverLogger(l *slog.Logger) RecoverOption {
	return func(cfg *RecoverConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithRecoverHandler registers a callback invoked with every recovered panic.
func WithRecoverHandler(fn func(r *http.Request, pe *PanicError)) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.OnPanic = fn
	}
}

// Recover returns middleware that recovers from panics outside the dispatcher
// (static files, health checks, other middleware). The panic is logged and,
// when nothing was written yet, a generic 500 page is sent.
func Recover(opts ...RecoverOption) func(http.Handler) http.Handler {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
		Logger:    logger.NewNope(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw, ok := w.(*httpx.ResponseWriter)
			if !ok {
				rw = httpx.NewResponseWriter(w)
			}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				var stack []byte
				// Allocate only when stack traces are enabled.
				if !cfg.DisablePrintStack {
					stack = make([]byte, cfg.StackSize)
					n := runtime.Stack(stack, false)
					stack = stack[:n]
				}

				pe := &PanicError{Value: rec, Stack: stack}
				attrs := []any{slog.Any("panic", rec)}
				if !cfg.DisablePrintStack {
					attrs = append(attrs, slog.String("stack", string(stack)))
				}
				cfg.Logger.ErrorContext(r.Context(), "panic recovered", attrs...)

				if cfg.OnPanic != nil {
					cfg.OnPanic(r, pe)
				}

				if !rw.Written() {
					_ = httpx.HTML(http.StatusInternalServerError, RecoverBody).Send(rw)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
