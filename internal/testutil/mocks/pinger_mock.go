package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPinger is a mock health check dependency.
type MockPinger struct {
	mock.Mock
}

// Ping reports health.
func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
