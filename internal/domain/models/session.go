package models

import "time"

// SessionStatus represents the lifecycle state of a chat session.
type SessionStatus string

const (
	// SessionIdle means no conversation is running.
	SessionIdle SessionStatus = "idle"
	// SessionQueued means the visitor is waiting for an agent.
	SessionQueued SessionStatus = "queued"
	// SessionConnected means an agent is assigned and replying.
	SessionConnected SessionStatus = "connected"
	// SessionEnded means the conversation timed out and was closed by the agent.
	SessionEnded SessionStatus = "ended"
)

// ChatSession is one end-to-end support conversation.
type ChatSession struct {
	ChatID    string        `json:"chatId"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   *time.Time    `json:"endedAt,omitempty"`
	Agent     *AgentProfile `json:"agent,omitempty"`
	UserName  string        `json:"userName,omitempty"`
	Messages  []Message     `json:"messages"`
}

// Clone returns a copy of the session that shares no mutable state with s.
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}

	clone := *s
	if s.EndedAt != nil {
		endedAt := *s.EndedAt
		clone.EndedAt = &endedAt
	}
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)

	return &clone
}
