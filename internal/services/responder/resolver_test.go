package responder_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/services/completion"
	"github.com/hostdesk/livechat-service/internal/services/responder"
	"github.com/hostdesk/livechat-service/internal/testutil/mocks"
)

type staticKey string

func (k staticKey) APIKey() string { return string(k) }

var sarah = models.AgentProfile{ID: "agent-sarah", Name: "Sarah", LocalizedName: "Sára"}

func newResolver(t *testing.T, completer completion.Completer, key string) responder.Resolver {
	t.Helper()
	r, err := responder.NewResolver(&responder.Config{
		Completer: completer,
		Keys:      staticKey(key),
		Language:  "en",
		Rand:      rand.New(rand.NewSource(1)),
		Clock:     clock.NewManual(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	return r
}

func TestNewResolver_Validation(t *testing.T) {
	_, err := responder.NewResolver(nil)
	assert.EqualError(t, err, "config is required")

	_, err = responder.NewResolver(&responder.Config{})
	assert.EqualError(t, err, "key source is required")
}

func TestResolve_NoKeyUsesPricingPool(t *testing.T) {
	// Arrange
	completer := new(mocks.MockCompleter)
	r := newResolver(t, completer, "")

	// Act
	reply := r.Resolve(context.Background(), &responder.Request{Message: "what's your pricing?", Agent: sarah})

	// Assert
	assert.Equal(t, responder.SourceFallback, reply.Source)
	assert.Equal(t, responder.CategoryPricing, reply.Category)
	assert.Contains(t, responder.Responses(responder.CategoryPricing), reply.Text)
	completer.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestResolve_NilCompleterFallsBack(t *testing.T) {
	r := newResolver(t, nil, "key")

	reply := r.Resolve(context.Background(), &responder.Request{Message: "hello"})

	assert.Equal(t, responder.SourceFallback, reply.Source)
	assert.Equal(t, responder.CategoryGreeting, reply.Category)
}

func TestResolve_RemoteSuccess(t *testing.T) {
	// Arrange
	completer := new(mocks.MockCompleter)
	completer.On("Chat", mock.Anything, mock.MatchedBy(func(req *completion.ChatRequest) bool {
		return req.APIKey == "key" &&
			req.AgentName == "Sarah" &&
			req.AgentNameLocal == "Sára" &&
			req.Language == "en" &&
			len(req.ChatHistory) == 2 &&
			req.ChatHistory[1].Role == completion.RoleAssistant
	})).Return("We offer free migrations.", nil)
	r := newResolver(t, completer, "key")

	history := []models.Message{
		{Kind: models.KindUser, Content: "hi"},
		{Kind: models.KindSystem, Content: "You are now connected with Sarah"},
		{Kind: models.KindAgent, Content: "Hello!"},
	}

	// Act
	reply := r.Resolve(context.Background(), &responder.Request{History: history, Message: "can you move my site?", Agent: sarah})

	// Assert
	assert.Equal(t, responder.SourceAI, reply.Source)
	assert.Equal(t, "We offer free migrations.", reply.Text)
	assert.Empty(t, r.Errors())
	completer.AssertExpectations(t)
}

func TestResolve_RemoteFailuresFallBackAndAreLogged(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *mocks.MockCompleter)
		want  string
	}{
		{
			name:  "network error",
			setup: func(m *mocks.MockCompleter) { m.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("dial tcp: refused")) },
			want:  "dial tcp: refused",
		},
		{
			name:  "empty response",
			setup: func(m *mocks.MockCompleter) { m.On("Chat", mock.Anything, mock.Anything).Return("", nil) },
			want:  completion.ErrEmptyResponse.Error(),
		},
		{
			name: "panic",
			setup: func(m *mocks.MockCompleter) {
				m.On("Chat", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("decoder exploded") })
			},
			want: "completion panicked: decoder exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := new(mocks.MockCompleter)
			tt.setup(completer)
			r := newResolver(t, completer, "key")

			reply := r.Resolve(context.Background(), &responder.Request{ChatID: "CHAT-1", Message: "I need help"})

			assert.Equal(t, responder.SourceFallback, reply.Source)
			assert.Equal(t, responder.CategorySupport, reply.Category)
			require.Len(t, r.Errors(), 1)
			assert.Equal(t, tt.want, r.Errors()[0].Error)
			assert.Equal(t, "CHAT-1", r.Errors()[0].ChatID)
		})
	}
}

func TestResolve_CancelledContextIsNotLogged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	completer := new(mocks.MockCompleter)
	completer.On("Chat", mock.Anything, mock.Anything).Return("", context.Canceled)
	r := newResolver(t, completer, "key")

	reply := r.Resolve(ctx, &responder.Request{Message: "hi"})

	assert.Equal(t, responder.SourceFallback, reply.Source)
	assert.Empty(t, r.Errors())
}

func TestBuildHistory_KeepsLastTenNonSystem(t *testing.T) {
	var messages []models.Message
	for i := 0; i < 12; i++ {
		messages = append(messages,
			models.Message{Kind: models.KindUser, Content: "u"},
			models.Message{Kind: models.KindSystem, Content: "s"},
		)
	}
	messages = append(messages, models.Message{Kind: models.KindAgent, Content: "last"})

	history := responder.BuildHistory(messages)

	require.Len(t, history, completion.MaxHistory)
	assert.Equal(t, "last", history[9].Content)
	for _, h := range history {
		assert.NotEqual(t, "s", h.Content)
	}
}
