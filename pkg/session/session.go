// Package session holds per-visitor state: the preferred language, the CSRF
// token and rate-limit counters. Sessions are persisted through a Store and
// identified by an opaque cookie token.
package session

import (
	"context"
	"maps"
	"strconv"
	"time"
)

// Session is a visitor's server-side state. Values are strings so that every
// Store backend round-trips them without type loss.
type Session struct {
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Values    map[string]string `json:"values"`
	Token     string            `json:"token"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`

	dirty bool
	isNew bool
}

// New creates an unsaved session.
func New(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Token:     token,
		Values:    make(map[string]string),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		isNew:     true,
	}
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (string, bool) {
	if s == nil || s.Values == nil {
		return "", false
	}
	v, ok := s.Values[key]
	return v, ok
}

// GetOr returns the value under key or def when absent.
func (s *Session) GetOr(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// GetInt64 parses the value under key as an integer.
func (s *Session) GetInt64(key string) (int64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return n, err == nil
}

// Set stores val under key and marks the session dirty when it changed.
func (s *Session) Set(key, val string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	if cur, ok := s.Values[key]; ok && cur == val {
		return
	}
	s.Values[key] = val
	s.dirty = true
}

// SetInt64 stores an integer value.
func (s *Session) SetInt64(key string, n int64) {
	s.Set(key, strconv.FormatInt(n, 10))
}

// Delete removes key, marking the session dirty if it existed.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// IsDirty reports unsaved changes.
func (s *Session) IsDirty() bool { return s.dirty }

// IsNew reports whether the session has never been persisted.
func (s *Session) IsNew() bool { return s.isNew }

// MarkSaved clears the dirty and new flags after a successful save.
func (s *Session) MarkSaved() {
	s.dirty = false
	s.isNew = false
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *Session) Clone() *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	if c.Values == nil {
		c.Values = make(map[string]string)
	}
	return &c
}

type ctxKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
