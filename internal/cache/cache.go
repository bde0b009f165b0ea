package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache entry not found")

// Backend is a key-value store for serialized response bodies.
//
// Keys are namespaced by the caller, values are opaque bytes with a
// time-to-live after which the backend evicts them.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the value stored under key, if any. Deleting an
	// absent key is not an error.
	Delete(ctx context.Context, key string) error
}
