package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/services/archive"
)

// MockArchiveRepository is a mock implementation of archive.Repository.
type MockArchiveRepository struct {
	mock.Mock
}

var _ archive.Repository = (*MockArchiveRepository)(nil)

// Load returns stored sessions.
func (m *MockArchiveRepository) Load(ctx context.Context) ([]models.ArchivedSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ArchivedSession), args.Error(1)
}

// Prepend stores a session.
func (m *MockArchiveRepository) Prepend(ctx context.Context, session models.ArchivedSession, limit int) error {
	args := m.Called(ctx, session, limit)
	return args.Error(0)
}

// Delete removes a session.
func (m *MockArchiveRepository) Delete(ctx context.Context, chatID string) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

// DeleteAll removes every session.
func (m *MockArchiveRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
