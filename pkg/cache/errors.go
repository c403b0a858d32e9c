package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrNotFound is returned when a key is missing or has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned when the cache has been closed.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal is returned when a value cannot be encoded for storage.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal is returned when a stored value cannot be decoded.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)
