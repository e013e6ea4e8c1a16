package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hostdesk/livechat-service/internal/services/completion"
)

// MockCompleter is a mock implementation of completion.Completer.
type MockCompleter struct {
	mock.Mock
}

var _ completion.Completer = (*MockCompleter)(nil)

// Chat returns a reply.
func (m *MockCompleter) Chat(ctx context.Context, req *completion.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// Validate checks a key.
func (m *MockCompleter) Validate(ctx context.Context, apiKey string) (*completion.ValidateResult, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*completion.ValidateResult), args.Error(1)
}
