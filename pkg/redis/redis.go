// Package redis opens the Redis client backing shared sessions and caches.
package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyURL         = errors.New("redis: empty connection url")
	ErrInvalidURL       = errors.New("redis: invalid connection url")
	ErrConnectionFailed = errors.New("redis: connection failed")
	ErrUnhealthy        = errors.New("redis: healthcheck failed")
)

// Option tunes the client created by Open.
type Option func(*settings)

type settings struct {
	poolSize int
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}

// WithPoolSize sets the maximum number of pooled connections. Default: 10.
func WithPoolSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithRetry sets the number of ping attempts and the linear backoff step
// between them. Default: 3 attempts, 2 seconds.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *settings) {
		s.attempts = max(attempts, 1)
		s.backoff = backoff
	}
}

// WithTimeout sets dial, read and write timeouts. Default: 3 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Open parses a redis:// or rediss:// URL and returns a client that has
// answered a PING.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidURL
	}

	s := settings{poolSize: 10, attempts: 3, backoff: 2 * time.Second, timeout: 3 * time.Second}
	for _, opt := range opts {
		opt(&s)
	}

	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	ro.PoolSize = s.poolSize
	ro.DialTimeout = s.timeout
	ro.ReadTimeout = s.timeout
	ro.WriteTimeout = s.timeout

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if attempt == s.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

// Healthcheck returns a readiness probe for the client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrUnhealthy
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}
