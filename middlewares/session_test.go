package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal/middlewares"
	"github.com/cureconnect/portal/pkg/cache"
	"github.com/cureconnect/portal/pkg/cookie"
	"github.com/cureconnect/portal/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newSessionStack(t *testing.T, h http.Handler) (http.Handler, *session.CacheStore) {
	t.Helper()

	mem := cache.NewMemory[session.Session](cache.WithSweepInterval(0))
	t.Cleanup(func() { _ = mem.Close() })
	store := session.NewCacheStore(mem)

	cookies, err := cookie.New(testSecret)
	require.NoError(t, err)

	return middlewares.Session(store, cookies)(middlewares.I18n()(h)), store
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middlewares.DefaultSessionCookieName {
			return c
		}
	}
	return nil
}

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("untouched session sets no cookie", func(t *testing.T) {
		t.Parallel()

		mem := cache.NewMemory[session.Session](cache.WithSweepInterval(0))
		t.Cleanup(func() { _ = mem.Close() })
		cookies, err := cookie.New(testSecret)
		require.NoError(t, err)

		handler := middlewares.Session(session.NewCacheStore(mem), cookies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := session.FromContext(r.Context())
			assert.True(t, ok)
			_, _ = w.Write([]byte("ok"))
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Nil(t, sessionCookie(t, rec))
		assert.Zero(t, mem.Len())
	})

	t.Run("modified session is saved and restored", func(t *testing.T) {
		t.Parallel()

		handler, _ := newSessionStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := session.FromContext(r.Context())
			if r.URL.Query().Get("set") != "" {
				sess.Set("visits", r.URL.Query().Get("set"))
			}
			_, _ = w.Write([]byte(sess.GetOr("visits", "none")))
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?set=3", nil))
		c := sessionCookie(t, rec)
		require.NotNil(t, c)
		assert.True(t, c.HttpOnly)
		assert.Contains(t, c.Value, ".")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(c)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "3", rec.Body.String())
	})

	t.Run("tampered cookie starts a fresh session", func(t *testing.T) {
		t.Parallel()

		handler, _ := newSessionStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := session.FromContext(r.Context())
			_, _ = w.Write([]byte(sess.GetOr("visits", "none")))
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: middlewares.DefaultSessionCookieName, Value: "forged.value"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "none", rec.Body.String())
	})
}

func TestI18n(t *testing.T) {
	t.Parallel()

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(middlewares.GetLanguage(r.Context())))
	})

	tests := []struct {
		name   string
		target string
		accept string
		want   string
	}{
		{name: "default", target: "/", want: "en"},
		{name: "query", target: "/?lang=ar", want: "ar"},
		{name: "unsupported query", target: "/?lang=fr", accept: "bn", want: "bn"},
		{name: "accept language by quality", target: "/", accept: "fr;q=0.9, ar;q=0.8, bn;q=0.95", want: "bn"},
		{name: "region subtag", target: "/", accept: "ar-SA", want: "ar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, _ := newSessionStack(t, echo)
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	t.Run("query choice persists in session", func(t *testing.T) {
		t.Parallel()

		handler, _ := newSessionStack(t, echo)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=bn", nil))
		c := sessionCookie(t, rec)
		require.NotNil(t, c)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "ar")
		req.AddCookie(c)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "bn", rec.Body.String())
	})

	t.Run("without session the language is still resolved", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		middlewares.I18n()(echo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=ar", nil))
		assert.Equal(t, "ar", rec.Body.String())
	})

	t.Run("extractor", func(t *testing.T) {
		t.Parallel()

		attr, ok := middlewares.LanguageExtractor()(middlewares.WithLanguage(t.Context(), "bn"))
		require.True(t, ok)
		assert.Equal(t, "lang", attr.Key)
		assert.True(t, strings.EqualFold("bn", attr.Value.String()))
	})
}
