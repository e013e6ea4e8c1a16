package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hostdesk/livechat-service/internal/core/docdb"
	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// MockDocDBClient is a mock implementation of docdb.Client.
type MockDocDBClient struct {
	mock.Mock
}

var _ docdb.Client = (*MockDocDBClient)(nil)

// Archive returns the archive collection.
func (m *MockDocDBClient) Archive() docdb.ArchiveCollection {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(docdb.ArchiveCollection)
}

// EnsureIndexes creates indexes.
func (m *MockDocDBClient) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Ping checks the connection.
func (m *MockDocDBClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the connection.
func (m *MockDocDBClient) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockArchiveCollection is a mock implementation of docdb.ArchiveCollection.
type MockArchiveCollection struct {
	mock.Mock
}

var _ docdb.ArchiveCollection = (*MockArchiveCollection)(nil)

// Insert stores a session.
func (m *MockArchiveCollection) Insert(ctx context.Context, session *models.ArchivedSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// List returns sessions.
func (m *MockArchiveCollection) List(ctx context.Context, limit int64) ([]models.ArchivedSession, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ArchivedSession), args.Error(1)
}

// Delete removes a session.
func (m *MockArchiveCollection) Delete(ctx context.Context, chatID string) (bool, error) {
	args := m.Called(ctx, chatID)
	return args.Bool(0), args.Error(1)
}

// DeleteAll removes every session.
func (m *MockArchiveCollection) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// TrimTo keeps the newest sessions.
func (m *MockArchiveCollection) TrimTo(ctx context.Context, keep int64) (int64, error) {
	args := m.Called(ctx, keep)
	return args.Get(0).(int64), args.Error(1)
}

// Count returns the number of sessions.
func (m *MockArchiveCollection) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
