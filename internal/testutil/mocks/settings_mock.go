package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/services/settings"
)

// MockSettingsRepository is a mock implementation of settings.Repository.
type MockSettingsRepository struct {
	mock.Mock
}

var _ settings.Repository = (*MockSettingsRepository)(nil)

// Load returns the saved state.
func (m *MockSettingsRepository) Load(ctx context.Context) (*settings.Stored, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.Stored), args.Error(1)
}

// Save stores the state.
func (m *MockSettingsRepository) Save(ctx context.Context, state *settings.Stored) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// Close releases resources.
func (m *MockSettingsRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSettingsService is a mock implementation of settings.Service.
type MockSettingsService struct {
	mock.Mock
}

var _ settings.Service = (*MockSettingsService)(nil)

// Load reads persisted settings.
func (m *MockSettingsService) Load(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Get returns the settings.
func (m *MockSettingsService) Get() models.Settings {
	args := m.Called()
	return args.Get(0).(models.Settings)
}

// APIKey returns the credential.
func (m *MockSettingsService) APIKey() string {
	args := m.Called()
	return args.String(0)
}

// HasAPIKey reports whether a credential is set.
func (m *MockSettingsService) HasAPIKey() bool {
	args := m.Called()
	return args.Bool(0)
}

// Public returns the widget view.
func (m *MockSettingsService) Public() settings.Public {
	args := m.Called()
	return args.Get(0).(settings.Public)
}

// Update applies a partial change.
func (m *MockSettingsService) Update(ctx context.Context, update *settings.Update) (models.Settings, error) {
	args := m.Called(ctx, update)
	return args.Get(0).(models.Settings), args.Error(1)
}

// SetAPIKey replaces the credential.
func (m *MockSettingsService) SetAPIKey(ctx context.Context, apiKey string) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}
