package session

import "errors"

var (
	// ErrNotFound is returned when no session matches a token.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned for sessions past their expiry.
	ErrExpired = errors.New("session: expired")

	// ErrInvalidToken is returned for empty or malformed tokens.
	ErrInvalidToken = errors.New("session: invalid token")
)
