// Package mocks provides testify mock implementations for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hostdesk/livechat-service/internal/core/cache"
)

// MockCache is a mock implementation of cache.Cache.
type MockCache struct {
	mock.Mock
}

var _ cache.Cache = (*MockCache)(nil)

// Get retrieves a value from the cache.
func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set stores a value in the cache.
func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete removes a value from the cache.
func (m *MockCache) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// PushCapped prepends to a capped list.
func (m *MockCache) PushCapped(ctx context.Context, key string, value []byte, limit int64) error {
	args := m.Called(ctx, key, value, limit)
	return args.Error(0)
}

// Range reads a list.
func (m *MockCache) Range(ctx context.Context, key string) ([][]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]byte), args.Error(1)
}

// RemoveValue removes list entries.
func (m *MockCache) RemoveValue(ctx context.Context, key string, value []byte) (int64, error) {
	args := m.Called(ctx, key, value)
	return args.Get(0).(int64), args.Error(1)
}

// Ping checks the cache connection.
func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the cache connection.
func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
