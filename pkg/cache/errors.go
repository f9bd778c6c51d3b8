package cache

import "errors"

var (
	// ErrNotFound is returned when a key is missing or expired.
	ErrNotFound = errors.New("cache: not found")

	// ErrClosed is returned by writes on a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrCodec is returned when a value cannot be encoded or decoded.
	ErrCodec = errors.New("cache: codec failure")
)
