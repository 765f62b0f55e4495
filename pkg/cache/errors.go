package cache

import "errors"

var (
	// ErrNotFound is returned when a key is missing or its entry has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned by a Memory cache after Close.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal is returned when a value cannot be encoded as JSON for Redis.
	ErrMarshal = errors.New("cache: marshal value")

	// ErrUnmarshal is returned when a stored Redis value cannot be decoded.
	ErrUnmarshal = errors.New("cache: unmarshal value")
)
