package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cureconnect/portal/pkg/cookie"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/id"
	"github.com/cureconnect/portal/pkg/logger"
	"github.com/cureconnect/portal/pkg/security"
	"github.com/cureconnect/portal/pkg/session"
)

// Default session configuration.
const (
	DefaultSessionCookieName = "__sid"
	DefaultSessionTTL        = 30 * 24 * time.Hour
)

// SessionConfig configures the session middleware.
type SessionConfig struct {
	Logger     *slog.Logger
	CookieName string
	TTL        time.Duration
}

// SessionOption configures SessionConfig.
type SessionOption func(*SessionConfig)

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(cfg *SessionConfig) {
		if name != "" {
			cfg.CookieName = name
		}
	}
}

// WithSessionTTL sets how long an idle session lives.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(cfg *SessionConfig) {
		if ttl > 0 {
			cfg.TTL = ttl
		}
	}
}

// WithSessionLogger sets the logger for session events.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(cfg *SessionConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// Session returns middleware that loads the visitor session named by the
// signed session cookie, or starts a new one, and stores it in the request
// context. A modified session is saved and its cookie refreshed right before
// the response headers are written; untouched sessions cost nothing.
func Session(store session.Store, cookies *cookie.Manager, opts ...SessionOption) func(http.Handler) http.Handler {
	cfg := &SessionConfig{
		CookieName: DefaultSessionCookieName,
		TTL:        DefaultSessionTTL,
		Logger:     logger.NewNope(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			rw, ok := w.(*httpx.ResponseWriter)
			if !ok {
				rw = httpx.NewResponseWriter(w)
			}

			sess := loadSession(r, store, cookies, cfg)

			rw.OnBeforeWrite(func() {
				if !sess.IsDirty() {
					return
				}
				sess.ExpiresAt = time.Now().Add(cfg.TTL)
				if err := store.Save(ctx, sess); err != nil {
					cfg.Logger.ErrorContext(ctx, "failed to save session", slog.Any("error", err))
					return
				}
				sess.MarkSaved()
				http.SetCookie(rw, cookies.Cookie(cfg.CookieName, sess.Token, cfg.TTL))
			})

			next.ServeHTTP(rw, r.WithContext(session.NewContext(ctx, sess)))
		})
	}
}

func loadSession(r *http.Request, store session.Store, cookies *cookie.Manager, cfg *SessionConfig) *session.Session {
	ctx := r.Context()
	token, err := cookies.Read(r, cfg.CookieName)
	if err == nil {
		sess, err := store.Get(ctx, token)
		if err == nil {
			return sess
		}
		if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
			cfg.Logger.WarnContext(ctx, "failed to load session", slog.Any("error", err))
		}
	} else if !errors.Is(err, cookie.ErrNotFound) {
		cfg.Logger.DebugContext(ctx, "rejected session cookie", slog.Any("error", err))
	}

	sess := session.New(id.RandomToken(32), cfg.TTL)
	sess.IP = security.ClientIP(r.Header.Get, r.RemoteAddr)
	sess.UserAgent = r.UserAgent()
	return sess
}
