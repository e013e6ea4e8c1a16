// Package cache defines the key-value and list store used for settings and
// the chat archive.
package cache

import (
	"context"
	"time"
)

// NoExpiration stores a key without a TTL.
const NoExpiration time.Duration = -1

// Cache defines the interface for cache operations.
type Cache interface {
	// Get retrieves a value by key.
	// Returns nil if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A ttl of 0 uses the default TTL,
	// NoExpiration keeps the key until it is deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	// Returns true if the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// PushCapped prepends value to the list at key and trims the list
	// to at most limit entries.
	PushCapped(ctx context.Context, key string, value []byte, limit int64) error

	// Range returns the whole list at key, head first.
	Range(ctx context.Context, key string) ([][]byte, error)

	// RemoveValue removes every list entry equal to value.
	// Returns the number of entries removed.
	RemoveValue(ctx context.Context, key string, value []byte) (int64, error)

	// Ping checks if the cache connection is alive.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
