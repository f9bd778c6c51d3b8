package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
)

// MinSecretLen is the shortest accepted signing secret.
const MinSecretLen = 32

// Manager signs and verifies cookie values with one secret and writes them
// with shared attributes.
type Manager struct {
	secret   []byte
	domain   string
	path     string
	secure   bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

func WithDomain(domain string) Option { return func(m *Manager) { m.domain = domain } }

func WithPath(path string) Option { return func(m *Manager) { m.path = path } }

func WithSecure(secure bool) Option { return func(m *Manager) { m.secure = secure } }

func WithSameSite(ss http.SameSite) Option { return func(m *Manager) { m.sameSite = ss } }

// New returns a Manager or ErrBadSecret when secret is too short.
func New(secret string, opts ...Option) (*Manager, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrBadSecret
	}
	m := &Manager{
		secret:   []byte(secret),
		path:     "/",
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Sign returns value with its signature appended: base64(value).base64(mac).
func (m *Manager) Sign(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(m.mac([]byte(value)))
}

// Verify checks a signed value and returns the original.
func (m *Manager) Verify(signed string) (string, error) {
	encVal, encSig, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encVal)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.mac(value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// Read returns the verified value of the named cookie.
func (m *Manager) Read(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return m.Verify(c.Value)
}

// Write sets a signed cookie living for ttl.
func (m *Manager) Write(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, m.Cookie(name, value, ttl))
}

// Expire instructs the client to drop the named cookie.
func (m *Manager) Expire(w http.ResponseWriter, name string) {
	c := m.cookie(name, "")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// Cookie builds the signed cookie without writing it.
func (m *Manager) Cookie(name, value string, ttl time.Duration) *http.Cookie {
	c := m.cookie(name, m.Sign(value))
	c.MaxAge = int(ttl / time.Second)
	return c
}

func (m *Manager) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}

func (m *Manager) mac(value []byte) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write(value)
	return h.Sum(nil)
}
