package chat

import (
	"sync"
	"time"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// EventType names what changed.
type EventType string

const (
	EventMessage  EventType = "message"
	EventStatus   EventType = "status"
	EventSession  EventType = "session"
	EventTyping   EventType = "typing"
	EventArchived EventType = "archived"
	EventReset    EventType = "reset"
)

// Event is one observable change of a widget's chat.
type Event struct {
	Type          EventType            `json:"type"`
	WidgetID      string               `json:"widgetId"`
	ChatID        string               `json:"chatId,omitempty"`
	Status        models.SessionStatus `json:"status,omitempty"`
	Message       *models.Message      `json:"message,omitempty"`
	Agent         *models.AgentProfile `json:"agent,omitempty"`
	Typing        *bool                `json:"typing,omitempty"`
	ArchiveStatus models.ArchiveStatus `json:"archiveStatus,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

// DefaultSubscriberBuffer is the per-subscriber channel capacity.
const DefaultSubscriberBuffer = 64

// Broadcaster fans events out to subscribers. Publish never blocks; a
// subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan Event
	buffer int
}

// NewBroadcaster creates a broadcaster with the given subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Broadcaster{subs: make(map[uint64]chan Event), buffer: buffer}
}

// Subscribe returns an event channel and a function that unsubscribes and
// closes it.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber with room for it.
func (b *Broadcaster) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
