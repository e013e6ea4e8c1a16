package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostdesk/livechat-service/internal/services/chat"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := chat.NewBroadcaster(4)
	first, cancelFirst := b.Subscribe()
	second, cancelSecond := b.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	b.Publish(chat.Event{Type: chat.EventSession, ChatID: "CHAT-1"})

	assert.Equal(t, "CHAT-1", (<-first).ChatID)
	assert.Equal(t, "CHAT-1", (<-second).ChatID)
	assert.Equal(t, 2, b.Subscribers())
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := chat.NewBroadcaster(1)
	events, cancel := b.Subscribe()

	cancel()
	cancel()

	_, open := <-events
	assert.False(t, open)
	assert.Equal(t, 0, b.Subscribers())

	b.Publish(chat.Event{Type: chat.EventReset})
}

func TestBroadcaster_DropsWhenBufferFull(t *testing.T) {
	b := chat.NewBroadcaster(1)
	events, cancel := b.Subscribe()
	defer cancel()

	b.Publish(chat.Event{Type: chat.EventMessage, ChatID: "first"})
	b.Publish(chat.Event{Type: chat.EventMessage, ChatID: "second"})

	got := drain(events)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].ChatID)
}
