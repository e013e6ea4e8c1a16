// Package memory provides an in-process cache for single-instance deployments
// and tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hostdesk/livechat-service/internal/core/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache implements cache.Cache with maps guarded by a mutex.
type Cache struct {
	mu         sync.Mutex
	values     map[string]entry
	lists      map[string][][]byte
	defaultTTL time.Duration
	now        func() time.Time
}

var _ cache.Cache = (*Cache)(nil)

// NewCache creates an empty in-memory cache.
func NewCache(defaultTTL time.Duration) *Cache {
	return &Cache{
		values:     make(map[string]entry),
		lists:      make(map[string][][]byte),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the stored value or nil if missing or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.values[key]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.values, key)
		return nil, nil
	}
	return bytes.Clone(e.value), nil
}

// Set stores a copy of value.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	e := entry{value: bytes.Clone(value)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.values[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes a key or list.
func (c *Cache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, isValue := c.values[key]
	_, isList := c.lists[key]
	delete(c.values, key)
	delete(c.lists, key)
	return isValue || isList, nil
}

// PushCapped prepends value and drops entries beyond limit.
func (c *Cache) PushCapped(_ context.Context, key string, value []byte, limit int64) error {
	if limit <= 0 {
		return fmt.Errorf("list limit must be positive, got %d", limit)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	list := append([][]byte{bytes.Clone(value)}, c.lists[key]...)
	if int64(len(list)) > limit {
		list = list[:limit]
	}
	c.lists[key] = list
	return nil
}

// Range returns copies of all list entries.
func (c *Cache) Range(_ context.Context, key string) ([][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.lists[key]
	out := make([][]byte, 0, len(list))
	for _, v := range list {
		out = append(out, bytes.Clone(v))
	}
	return out, nil
}

// RemoveValue removes all entries equal to value.
func (c *Cache) RemoveValue(_ context.Context, key string, value []byte) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.lists[key]
	kept := list[:0]
	var removed int64
	for _, v := range list {
		if bytes.Equal(v, value) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		delete(c.lists, key)
	} else {
		c.lists[key] = kept
	}
	return removed, nil
}

// Ping always succeeds.
func (c *Cache) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (c *Cache) Close() error {
	return nil
}
