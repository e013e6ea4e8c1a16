package chat

import (
	"time"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// Status transition delays, measured from when a message is appended.
const (
	UserDeliveredAfter  = 500 * time.Millisecond
	UserReadAfter       = 1500 * time.Millisecond
	AgentDeliveredAfter = 1000 * time.Millisecond
	AgentReadAfter      = 2500 * time.Millisecond
)

// statusDelays returns the delivered and read offsets for kind.
func statusDelays(kind models.MessageKind) (delivered, read time.Duration) {
	if kind == models.KindAgent {
		return AgentDeliveredAfter, AgentReadAfter
	}
	return UserDeliveredAfter, UserReadAfter
}

// MessageStore is the ordered transcript of one session. It is not safe for
// concurrent use; the controller serializes access.
type MessageStore struct {
	lastID   int64
	messages []models.Message
	index    map[int64]int
}

// NewMessageStore creates an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{index: make(map[int64]int)}
}

// Append adds a message at the tail. Ids keep increasing across Clear.
func (s *MessageStore) Append(kind models.MessageKind, content string, at time.Time) models.Message {
	s.lastID++
	msg := models.Message{
		ID:        s.lastID,
		Kind:      kind,
		Content:   content,
		Timestamp: at,
	}
	if kind.HasStatus() {
		msg.Status = models.StatusSent
	}

	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg)
	return msg
}

// Advance moves a message one status step forward. It returns false for
// unknown ids, system messages and messages already read.
func (s *MessageStore) Advance(id int64) (models.Message, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Message{}, false
	}

	next, ok := s.messages[i].Status.Next()
	if !ok {
		return models.Message{}, false
	}
	s.messages[i].Status = next
	return s.messages[i], true
}

// Get returns the message with id.
func (s *MessageStore) Get(id int64) (models.Message, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Message{}, false
	}
	return s.messages[i], true
}

// All returns a copy of the transcript.
func (s *MessageStore) All() []models.Message {
	return append([]models.Message{}, s.messages...)
}

// Before returns a copy of the messages appended before id.
func (s *MessageStore) Before(id int64) []models.Message {
	i, ok := s.index[id]
	if !ok {
		return s.All()
	}
	return append([]models.Message{}, s.messages[:i]...)
}

// Len returns the number of messages.
func (s *MessageStore) Len() int {
	return len(s.messages)
}

// Clear empties the transcript.
func (s *MessageStore) Clear() {
	s.messages = nil
	s.index = make(map[int64]int)
}
