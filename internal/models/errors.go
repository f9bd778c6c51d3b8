package models

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	ErrNotFound     = errors.New("models: record not found")
	ErrInvalidID    = errors.New("models: invalid id")
	ErrNothingToSet = errors.New("models: no fields to update")
)

// ValidationErrors maps form field names to user-facing messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := slices.Sorted(maps.Keys(v))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "models: validation failed: " + strings.Join(parts, "; ")
}

// AsValidationErrors extracts field errors from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
