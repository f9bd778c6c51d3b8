package session

import (
	"context"
	"errors"
	"time"

	"github.com/cureconnect/portal/pkg/cache"
)

// Store persists sessions by token.
type Store interface {
	// Get returns ErrNotFound or ErrExpired when the token is unusable.
	Get(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}

// CacheStore keeps sessions in any cache.Cache: cache.Memory for a single
// instance, cache.Redis when sessions must be shared.
type CacheStore struct {
	c cache.Cache[Session]
}

// NewCacheStore wraps c.
func NewCacheStore(c cache.Cache[Session]) *CacheStore {
	return &CacheStore{c: c}
}

func (s *CacheStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	sess, err := s.c.Get(ctx, token)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		_ = s.c.Delete(ctx, token)
		return nil, ErrExpired
	}
	return sess.Clone(), nil
}

func (s *CacheStore) Save(ctx context.Context, sess *Session) error {
	if sess.Token == "" {
		return ErrInvalidToken
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	return s.c.Set(ctx, sess.Token, *sess.Clone(), ttl)
}

func (s *CacheStore) Delete(ctx context.Context, token string) error {
	return s.c.Delete(ctx, token)
}

var _ Store = (*CacheStore)(nil)
