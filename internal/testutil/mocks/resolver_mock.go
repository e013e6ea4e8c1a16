package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hostdesk/livechat-service/internal/services/responder"
)

// MockResolver is a mock implementation of responder.Resolver.
type MockResolver struct {
	mock.Mock
}

var _ responder.Resolver = (*MockResolver)(nil)

// Resolve returns a reply.
func (m *MockResolver) Resolve(ctx context.Context, req *responder.Request) responder.Reply {
	args := m.Called(ctx, req)
	return args.Get(0).(responder.Reply)
}

// Fallback returns a local reply.
func (m *MockResolver) Fallback(message string) responder.Reply {
	args := m.Called(message)
	return args.Get(0).(responder.Reply)
}

// Errors returns recent failures.
func (m *MockResolver) Errors() []responder.ErrorEntry {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]responder.ErrorEntry)
}
