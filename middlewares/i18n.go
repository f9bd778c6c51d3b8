package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cureconnect/portal/pkg/i18n"
	"github.com/cureconnect/portal/pkg/logger"
	"github.com/cureconnect/portal/pkg/session"
)

// LanguageSessionKey is the session key holding the visitor language.
const LanguageSessionKey = "language"

// languageKey is the context key for the resolved language.
type languageKey struct{}

// I18nConfig configures the I18n middleware.
type I18nConfig struct {
	QueryParam string
	SessionKey string
}

// I18nOption configures I18nConfig.
type I18nOption func(*I18nConfig)

// WithI18nQueryParam sets the query parameter that switches language.
func WithI18nQueryParam(name string) I18nOption {
	return func(cfg *I18nConfig) {
		if name != "" {
			cfg.QueryParam = name
		}
	}
}

// WithI18nSessionKey sets the session key the language is persisted under.
func WithI18nSessionKey(key string) I18nOption {
	return func(cfg *I18nConfig) {
		if key != "" {
			cfg.SessionKey = key
		}
	}
}

// I18n returns middleware that resolves the visitor language from the query
// string, the session and the Accept-Language header (see i18n.Negotiate),
// persists it in the session when the Session middleware runs first, and
// stores it in the request context.
func I18n(opts ...I18nOption) func(http.Handler) http.Handler {
	cfg := &I18nConfig{
		QueryParam: "lang",
		SessionKey: LanguageSessionKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, hasSession := session.FromContext(r.Context())
			stored := ""
			if hasSession {
				stored = sess.GetOr(cfg.SessionKey, "")
			}

			lang, persist := i18n.Negotiate(r.URL.Query().Get(cfg.QueryParam), stored, r.Header.Get("Accept-Language"))
			if persist && hasSession {
				sess.Set(cfg.SessionKey, lang)
			}

			next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), lang)))
		})
	}
}

// WithLanguage returns a context carrying lang.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey{}, lang)
}

// GetLanguage extracts the resolved language from the context.
// Returns an empty string if the I18n middleware is not used.
func GetLanguage(ctx context.Context) string {
	if v, ok := ctx.Value(languageKey{}).(string); ok {
		return v
	}
	return ""
}

// LanguageExtractor returns a logger.Extractor adding "lang" to log entries.
func LanguageExtractor() logger.Extractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := GetLanguage(ctx); v != "" {
			return slog.String("lang", v), true
		}
		return slog.Attr{}, false
	}
}
