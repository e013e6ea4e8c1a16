package chat_test

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/services/agents"
	"github.com/hostdesk/livechat-service/internal/services/archive"
	"github.com/hostdesk/livechat-service/internal/services/chat"
	"github.com/hostdesk/livechat-service/internal/services/completion"
	"github.com/hostdesk/livechat-service/internal/services/responder"
	"github.com/hostdesk/livechat-service/internal/services/settings"
	"github.com/hostdesk/livechat-service/internal/testutil/mocks"
)

var start = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type harnessOptions struct {
	apiKey    string
	completer completion.Completer
	dispatch  func(func())
}

type harness struct {
	clock    *clock.Manual
	settings settings.Service
	archive  archive.Service
	ctrl     *chat.Controller
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	clk := clock.NewManual(start)
	settingsSvc, err := settings.NewService(&settings.Config{
		Repository:    settings.NewMemoryRepository(),
		Defaults:      models.DefaultSettings(),
		DefaultAPIKey: opts.apiKey,
	})
	require.NoError(t, err)

	archiveSvc, err := archive.NewService(&archive.Config{
		Repository: archive.NewMemoryRepository(),
		Clock:      clk,
	})
	require.NoError(t, err)

	resolver, err := responder.NewResolver(&responder.Config{
		Completer: opts.completer,
		Keys:      settingsSvc,
		Rand:      rand.New(rand.NewSource(7)),
		Clock:     clk,
	})
	require.NoError(t, err)

	dispatch := opts.dispatch
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}

	ctrl, err := chat.NewController(&chat.Config{
		WidgetID:         "widget-1",
		Settings:         settingsSvc,
		Agents:           agents.DefaultPool(),
		Resolver:         resolver,
		Archiver:         archiveSvc,
		Clock:            clk,
		Rand:             rand.New(rand.NewSource(1)),
		Dispatch:         dispatch,
		SubscriberBuffer: 1024,
	})
	require.NoError(t, err)

	return &harness{clock: clk, settings: settingsSvc, archive: archiveSvc, ctrl: ctrl}
}

// connect starts a session with "hi" and runs it until the greeting and the
// first reply have been delivered.
func (h *harness) connect(t *testing.T) models.AgentProfile {
	t.Helper()

	_, err := h.ctrl.Submit("hi", "Jana")
	require.NoError(t, err)
	h.clock.Advance(3 * time.Second)

	session := h.ctrl.Snapshot()
	require.Equal(t, models.SessionConnected, session.Status)
	require.NotNil(t, session.Agent)

	h.clock.Advance(17 * time.Second)
	require.Len(t, agentMessages(h.ctrl.Snapshot()), 2)
	return *session.Agent
}

func agentMessages(session models.ChatSession) []models.Message {
	var out []models.Message
	for _, m := range session.Messages {
		if m.Kind == models.KindAgent {
			out = append(out, m)
		}
	}
	return out
}

func lastMessage(session models.ChatSession) models.Message {
	return session.Messages[len(session.Messages)-1]
}

func hasContent(session models.ChatSession, content string) bool {
	for _, m := range session.Messages {
		if m.Content == content {
			return true
		}
	}
	return false
}

func drain(ch <-chan chat.Event) []chat.Event {
	var out []chat.Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

type taskQueue struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *taskQueue) dispatch(f func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, f)
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *taskQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		f := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		f()
	}
}

func TestNewController_Validation(t *testing.T) {
	_, err := chat.NewController(nil)
	assert.EqualError(t, err, "config is required")

	_, err = chat.NewController(&chat.Config{})
	assert.EqualError(t, err, "settings source is required")
}

func TestNewChatID_Format(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^CHAT-[0-9A-F]{8}$`), chat.NewChatID())
	assert.NotEqual(t, chat.NewChatID(), chat.NewChatID())
}

func TestController_FirstMessageQueuesThenConnects(t *testing.T) {
	// Arrange
	h := newHarness(t, harnessOptions{})

	// Act
	msg, err := h.ctrl.Submit("hi", " Jana ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.KindUser, msg.Kind)
	assert.Equal(t, models.StatusSent, msg.Status)

	session := h.ctrl.Snapshot()
	assert.Equal(t, models.SessionQueued, session.Status)
	assert.True(t, strings.HasPrefix(session.ChatID, "CHAT-"))
	assert.Equal(t, "Jana", session.UserName)
	assert.Equal(t, start, session.StartedAt)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, "hi", session.Messages[0].Content)
	assert.Equal(t, models.KindSystem, session.Messages[1].Kind)
	assert.Equal(t, chat.QueuedText, session.Messages[1].Content)
	assert.Empty(t, session.Messages[1].Status)

	h.clock.Advance(3*time.Second - time.Millisecond)
	assert.Equal(t, models.SessionQueued, h.ctrl.Snapshot().Status)

	h.clock.Advance(time.Millisecond)
	session = h.ctrl.Snapshot()
	require.Equal(t, models.SessionConnected, session.Status)
	require.NotNil(t, session.Agent)
	_, known := agents.DefaultPool().Get(session.Agent.ID)
	assert.True(t, known)
	assert.Equal(t, chat.ConnectedText(*session.Agent), lastMessage(session).Content)

	h.clock.Advance(chat.GreetingDelay)
	session = h.ctrl.Snapshot()
	assert.Equal(t, chat.GreetingText(*session.Agent), lastMessage(session).Content)
	assert.Equal(t, models.KindAgent, lastMessage(session).Kind)

	h.clock.Advance(16 * time.Second)
	replies := agentMessages(h.ctrl.Snapshot())
	require.Len(t, replies, 2)
	assert.Contains(t, responder.Responses(responder.CategoryGreeting), replies[1].Content)
}

func TestController_PricingQuestionUsesFallbackWithoutKey(t *testing.T) {
	// Arrange
	h := newHarness(t, harnessOptions{})
	h.connect(t)

	// Act
	_, err := h.ctrl.Submit("what's your pricing?", "")
	require.NoError(t, err)
	h.clock.Advance(16 * time.Second)

	// Assert
	replies := agentMessages(h.ctrl.Snapshot())
	require.Len(t, replies, 3)
	assert.Contains(t, responder.Responses(responder.CategoryPricing), replies[2].Content)
}

func TestController_RemoteReplyWithKey(t *testing.T) {
	// Arrange
	completer := new(mocks.MockCompleter)
	completer.On("Chat", mock.Anything, mock.MatchedBy(func(req *completion.ChatRequest) bool {
		return req.APIKey == "sk-live" && req.Message == "hi"
	})).Return("Hello from the model", nil)
	h := newHarness(t, harnessOptions{apiKey: "sk-live", completer: completer})

	// Act
	h.connect(t)

	// Assert
	replies := agentMessages(h.ctrl.Snapshot())
	assert.Equal(t, "Hello from the model", replies[1].Content)
	completer.AssertExpectations(t)
}

func TestController_RemoteFailureFallsBack(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))
	h := newHarness(t, harnessOptions{apiKey: "sk-live", completer: completer})

	h.connect(t)

	replies := agentMessages(h.ctrl.Snapshot())
	assert.Contains(t, responder.Responses(responder.CategoryGreeting), replies[1].Content)
}

func TestController_FollowUpThenEndChatArchivesCompleted(t *testing.T) {
	// Arrange
	h := newHarness(t, harnessOptions{})
	h.connect(t)
	session := h.ctrl.Snapshot()
	lastReply := agentMessages(session)[1]
	followUpAt := lastReply.Timestamp.Add(time.Minute)

	// Act & Assert: follow-up prompt
	h.clock.Advance(followUpAt.Sub(h.clock.Now()) - time.Millisecond)
	assert.False(t, hasContent(h.ctrl.Snapshot(), chat.FollowUpText))

	h.clock.Advance(time.Millisecond)
	session = h.ctrl.Snapshot()
	assert.Equal(t, chat.FollowUpText, lastMessage(session).Content)
	assert.Equal(t, models.KindAgent, lastMessage(session).Kind)

	// Act & Assert: end chat
	h.clock.Advance(30*time.Second - time.Millisecond)
	assert.Equal(t, models.SessionConnected, h.ctrl.Snapshot().Status)

	h.clock.Advance(time.Millisecond)
	session = h.ctrl.Snapshot()
	require.Equal(t, models.SessionEnded, session.Status)
	require.NotNil(t, session.EndedAt)
	n := len(session.Messages)
	assert.Equal(t, chat.ClosingText, session.Messages[n-2].Content)
	assert.Equal(t, models.KindAgent, session.Messages[n-2].Kind)
	assert.Equal(t, chat.EndedText, session.Messages[n-1].Content)
	assert.Equal(t, models.KindSystem, session.Messages[n-1].Kind)

	archived, err := h.archive.Get(session.ChatID)
	require.NoError(t, err)
	assert.Equal(t, models.ArchiveCompleted, archived.Status)
	assert.Equal(t, *session.EndedAt, archived.EndedAt)
	assert.Equal(t, "Jana", archived.UserName)
}

func TestController_SubmitAfterEndedIsRejected(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.connect(t)
	h.clock.Advance(2 * time.Minute)
	require.Equal(t, models.SessionEnded, h.ctrl.Snapshot().Status)
	before := h.ctrl.Snapshot()

	_, err := h.ctrl.Submit("hello again", "")

	assert.ErrorIs(t, err, chat.ErrSessionEnded)
	assert.Len(t, h.ctrl.Snapshot().Messages, len(before.Messages))
}

func TestController_CloseConnectedArchivesAndStopsTimers(t *testing.T) {
	// Arrange
	h := newHarness(t, harnessOptions{})
	h.connect(t)
	chatID := h.ctrl.Snapshot().ChatID
	events, cancel := h.ctrl.Subscribe()
	defer cancel()

	// Act
	archived, err := h.ctrl.Close(context.Background())

	// Assert
	require.NoError(t, err)
	require.NotNil(t, archived)
	assert.Equal(t, models.ArchiveClosedByUser, archived.Status)
	assert.Equal(t, chatID, archived.ChatID)
	assert.NotEmpty(t, archived.Messages)

	session := h.ctrl.Snapshot()
	assert.Equal(t, models.SessionIdle, session.Status)
	assert.Empty(t, session.Messages)
	assert.Equal(t, 0, h.ctrl.PendingTimers())
	assert.Equal(t, 0, h.clock.Pending())

	closing := drain(events)
	require.Len(t, closing, 2)
	assert.Equal(t, chat.EventReset, closing[0].Type)
	assert.Equal(t, chat.EventArchived, closing[1].Type)
	assert.Equal(t, models.ArchiveClosedByUser, closing[1].ArchiveStatus)

	h.clock.Advance(time.Hour)
	assert.Empty(t, drain(events))
	assert.Equal(t, models.SessionIdle, h.ctrl.Snapshot().Status)
	assert.Equal(t, 1, h.archive.Len())
}

func TestController_CloseWhileQueuedDoesNotArchive(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	_, err := h.ctrl.Submit("hello", "")
	require.NoError(t, err)

	archived, err := h.ctrl.Close(context.Background())

	require.NoError(t, err)
	assert.Nil(t, archived)
	assert.Equal(t, 0, h.archive.Len())

	h.clock.Advance(time.Minute)
	assert.Equal(t, models.SessionIdle, h.ctrl.Snapshot().Status)
}

func TestController_CloseAfterEndedOnlyResets(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.connect(t)
	h.clock.Advance(2 * time.Minute)
	require.Equal(t, 1, h.archive.Len())

	archived, err := h.ctrl.Close(context.Background())

	require.NoError(t, err)
	assert.Nil(t, archived)
	assert.Equal(t, 1, h.archive.Len())
	assert.Equal(t, models.SessionIdle, h.ctrl.Snapshot().Status)
}

func TestController_ResetIsIdempotent(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.connect(t)

	h.ctrl.Reset()
	first := h.ctrl.Snapshot()
	h.ctrl.Reset()
	second := h.ctrl.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, models.SessionIdle, second.Status)
	assert.Empty(t, second.Messages)
	assert.Nil(t, second.Agent)
	assert.Equal(t, 0, h.ctrl.PendingTimers())
	assert.Equal(t, 0, h.archive.Len())
}

func TestController_MessageIDsKeepIncreasingAfterReset(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	first, err := h.ctrl.Submit("hi", "")
	require.NoError(t, err)
	h.ctrl.Reset()

	second, err := h.ctrl.Submit("hi", "")
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
}

func TestController_UserActivityResetsFollowUp(t *testing.T) {
	// Arrange
	h := newHarness(t, harnessOptions{})
	h.connect(t)
	h.clock.Advance(40 * time.Second)

	// Act
	msg, err := h.ctrl.Submit("do you sell domains?", "")
	require.NoError(t, err)

	// Assert
	h.clock.Advance(time.Minute - time.Millisecond)
	assert.False(t, hasContent(h.ctrl.Snapshot(), chat.FollowUpText))

	h.clock.Advance(2 * time.Minute)
	session := h.ctrl.Snapshot()
	var prompt *models.Message
	for i := range session.Messages {
		if session.Messages[i].Content == chat.FollowUpText {
			prompt = &session.Messages[i]
		}
	}
	require.NotNil(t, prompt)
	assert.False(t, prompt.Timestamp.Before(msg.Timestamp.Add(time.Minute)))
}

func TestController_UserMessageCancelsPendingEndChat(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.connect(t)
	h.clock.Advance(time.Minute)
	require.True(t, hasContent(h.ctrl.Snapshot(), chat.FollowUpText))

	_, err := h.ctrl.Submit("yes, one more thing", "")
	require.NoError(t, err)
	h.clock.Advance(45 * time.Second)

	assert.Equal(t, models.SessionConnected, h.ctrl.Snapshot().Status)
	assert.False(t, hasContent(h.ctrl.Snapshot(), chat.ClosingText))
}

func TestController_ZeroFollowUpTimeoutEndsChat(t *testing.T) {
	// Arrange
	h := newHarness(t, harnessOptions{})
	zero := int64(0)
	_, err := h.settings.Update(context.Background(), &settings.Update{
		QueueAssignTime: &zero,
		FollowUpTimeout: &zero,
	})
	require.NoError(t, err)

	// Act
	_, err = h.ctrl.Submit("hi", "")
	require.NoError(t, err)
	h.clock.Advance(time.Minute)

	// Assert
	session := h.ctrl.Snapshot()
	require.Equal(t, models.SessionEnded, session.Status)
	prompts := 0
	for _, m := range session.Messages {
		if m.Content == chat.FollowUpText {
			prompts++
		}
	}
	assert.Equal(t, 1, prompts)
	assert.Len(t, agentMessages(session), 4)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestController_FollowUpWaitsForPendingReply(t *testing.T) {
	// Arrange
	queue := &taskQueue{}
	h := newHarness(t, harnessOptions{dispatch: queue.dispatch})
	_, err := h.ctrl.Submit("hi", "")
	require.NoError(t, err)
	h.clock.Advance(3 * time.Second)
	require.Equal(t, 1, queue.len())

	// Act: the follow-up falls due while the reply is still being resolved
	h.clock.Advance(2 * time.Minute)

	// Assert
	session := h.ctrl.Snapshot()
	assert.Equal(t, models.SessionConnected, session.Status)
	assert.False(t, hasContent(session, chat.FollowUpText))
	assert.Len(t, agentMessages(session), 1)

	// Act: the reply arrives and is delivered
	queue.drain()
	h.clock.Advance(20 * time.Second)
	require.Len(t, agentMessages(h.ctrl.Snapshot()), 2)
	assert.False(t, hasContent(h.ctrl.Snapshot(), chat.FollowUpText))

	// Assert: the follow-up is re-armed from the delivered reply
	h.clock.Advance(time.Minute)
	session = h.ctrl.Snapshot()
	assert.Equal(t, models.SessionConnected, session.Status)
	assert.Equal(t, chat.FollowUpText, lastMessage(session).Content)
}

func TestController_MessagesWhileQueuedAreAnsweredInOrder(t *testing.T) {
	// Arrange
	h := newHarness(t, harnessOptions{})
	_, err := h.ctrl.Submit("hi", "")
	require.NoError(t, err)
	h.clock.Advance(time.Second)

	// Act
	_, err = h.ctrl.Submit("how much is hosting?", "")
	require.NoError(t, err)
	assert.Equal(t, models.SessionQueued, h.ctrl.Snapshot().Status)

	h.clock.Advance(40 * time.Second)

	// Assert
	replies := agentMessages(h.ctrl.Snapshot())
	require.Len(t, replies, 3)
	assert.Contains(t, responder.Responses(responder.CategoryGreeting), replies[1].Content)
	assert.Contains(t, responder.Responses(responder.CategoryPricing), replies[2].Content)
	assert.True(t, replies[1].Timestamp.Before(replies[2].Timestamp))
}

func TestController_RejectsInvalidMessages(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	_, err := h.ctrl.Submit("   ", "")
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)

	_, err = h.ctrl.Submit(strings.Repeat("a", chat.MaxMessageLength+1), "")
	assert.ErrorIs(t, err, chat.ErrMessageTooLong)

	assert.Equal(t, models.SessionIdle, h.ctrl.Snapshot().Status)
	assert.Equal(t, 0, h.ctrl.PendingTimers())
}

func TestController_ChatDisabled(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	disabled := false
	_, err := h.settings.Update(context.Background(), &settings.Update{ChatEnabled: &disabled})
	require.NoError(t, err)

	_, err = h.ctrl.Submit("hi", "")

	assert.ErrorIs(t, err, chat.ErrChatDisabled)
	assert.Equal(t, models.SessionIdle, h.ctrl.Snapshot().Status)
}

func TestController_SettingsReadWhenScheduled(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	_, err := h.ctrl.Submit("hi", "")
	require.NoError(t, err)

	longer := int64(10000)
	_, err = h.settings.Update(context.Background(), &settings.Update{QueueAssignTime: &longer})
	require.NoError(t, err)
	h.clock.Advance(3 * time.Second)

	assert.Equal(t, models.SessionConnected, h.ctrl.Snapshot().Status)
}

func TestController_StaleResolverResultIsDropped(t *testing.T) {
	// Arrange
	queue := &taskQueue{}
	h := newHarness(t, harnessOptions{dispatch: queue.dispatch})
	_, err := h.ctrl.Submit("hi", "")
	require.NoError(t, err)
	h.clock.Advance(3 * time.Second)
	require.Equal(t, 1, queue.len())

	// Act
	h.ctrl.Reset()
	_, err = h.ctrl.Submit("a new conversation", "")
	require.NoError(t, err)
	queue.drain()

	// Assert
	session := h.ctrl.Snapshot()
	assert.Equal(t, models.SessionQueued, session.Status)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, "a new conversation", session.Messages[0].Content)
	assert.Empty(t, agentMessages(session))
}

func TestController_MessageStatusesAdvanceInOrder(t *testing.T) {
	// Arrange
	h := newHarness(t, harnessOptions{})
	events, cancel := h.ctrl.Subscribe()
	defer cancel()

	// Act
	h.connect(t)
	h.clock.Advance(5 * time.Minute)

	// Assert
	order := []models.MessageStatus{models.StatusSent, models.StatusDelivered, models.StatusRead}
	seen := make(map[int64][]models.MessageStatus)
	for _, e := range drain(events) {
		if e.Message == nil || !e.Message.Kind.HasStatus() {
			continue
		}
		if e.Type == chat.EventMessage || e.Type == chat.EventStatus {
			seen[e.Message.ID] = append(seen[e.Message.ID], e.Message.Status)
		}
	}
	require.NotEmpty(t, seen)
	for id, statuses := range seen {
		assert.Equal(t, order[:len(statuses)], statuses, "message %d", id)
	}

	for _, m := range h.ctrl.Snapshot().Messages {
		if m.Kind.HasStatus() {
			assert.Equal(t, models.StatusRead, m.Status)
		} else {
			assert.Empty(t, m.Status)
		}
	}
}

func TestController_UserMessageStatusTiming(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	msg, err := h.ctrl.Submit("hi", "")
	require.NoError(t, err)

	h.clock.Advance(chat.UserDeliveredAfter)
	assert.Equal(t, models.StatusDelivered, h.ctrl.Snapshot().Messages[0].Status)

	h.clock.Advance(chat.UserReadAfter - chat.UserDeliveredAfter - time.Millisecond)
	assert.Equal(t, models.StatusDelivered, h.ctrl.Snapshot().Messages[0].Status)

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, models.StatusRead, h.ctrl.Snapshot().Messages[0].Status)
	assert.Equal(t, msg.ID, h.ctrl.Snapshot().Messages[0].ID)
}

func TestController_TypingIndicatorWrapsReply(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	events, cancel := h.ctrl.Subscribe()
	defer cancel()

	h.connect(t)

	var trace []string
	for _, e := range drain(events) {
		switch {
		case e.Type == chat.EventTyping && *e.Typing:
			trace = append(trace, "typing")
		case e.Type == chat.EventTyping:
			trace = append(trace, "idle")
		case e.Type == chat.EventMessage && e.Message.Kind == models.KindAgent:
			trace = append(trace, "reply")
		}
	}
	assert.Equal(t, []string{"reply", "typing", "idle", "reply"}, trace)
	assert.False(t, h.ctrl.Typing())
}

func TestController_EventsCarryWidgetAndChat(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	events, cancel := h.ctrl.Subscribe()
	defer cancel()

	_, err := h.ctrl.Submit("hi", "")
	require.NoError(t, err)

	got := drain(events)
	require.Len(t, got, 3)
	assert.Equal(t, chat.EventMessage, got[0].Type)
	assert.Equal(t, chat.EventMessage, got[1].Type)
	assert.Equal(t, chat.EventSession, got[2].Type)
	for _, e := range got {
		assert.Equal(t, "widget-1", e.WidgetID)
		assert.Equal(t, h.ctrl.Snapshot().ChatID, e.ChatID)
		assert.Equal(t, models.SessionQueued, e.Status)
	}
}
