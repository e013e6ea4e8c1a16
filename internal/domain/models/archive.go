package models

import (
	"strings"
	"time"
)

// ArchiveStatus records how an archived conversation finished.
type ArchiveStatus string

const (
	// ArchiveCompleted means the chat ended after the follow-up and end-chat timeouts.
	ArchiveCompleted ArchiveStatus = "completed"
	// ArchiveClosedByUser means the visitor closed the chat.
	ArchiveClosedByUser ArchiveStatus = "closed_by_user"
)

// IsValid reports whether s is a known archive status.
func (s ArchiveStatus) IsValid() bool {
	return s == ArchiveCompleted || s == ArchiveClosedByUser
}

// ArchivedSession is an immutable record of a finished chat session.
type ArchivedSession struct {
	ChatID     string        `json:"chatId" bson:"_id"`
	Status     ArchiveStatus `json:"status" bson:"status"`
	StartedAt  time.Time     `json:"startedAt" bson:"startedAt"`
	EndedAt    time.Time     `json:"endedAt" bson:"endedAt"`
	Agent      *AgentProfile `json:"agent,omitempty" bson:"agent,omitempty"`
	UserName   string        `json:"userName,omitempty" bson:"userName,omitempty"`
	Messages   []Message     `json:"messages" bson:"messages"`
	ArchivedAt time.Time     `json:"archivedAt" bson:"archivedAt"`
}

// NewArchivedSession copies session into an archive record.
func NewArchivedSession(session *ChatSession, status ArchiveStatus, now time.Time) ArchivedSession {
	snapshot := session.Clone()

	endedAt := now
	if snapshot.EndedAt != nil {
		endedAt = *snapshot.EndedAt
	}

	var agent *AgentProfile
	if snapshot.Agent != nil {
		a := *snapshot.Agent
		agent = &a
	}

	return ArchivedSession{
		ChatID:     snapshot.ChatID,
		Status:     status,
		StartedAt:  snapshot.StartedAt,
		EndedAt:    endedAt,
		Agent:      agent,
		UserName:   snapshot.UserName,
		Messages:   snapshot.Messages,
		ArchivedAt: now,
	}
}

// Matches reports whether the case-insensitive query occurs in the chat id,
// either agent name or any message content. An empty query matches everything.
func (a ArchivedSession) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	if strings.Contains(strings.ToLower(a.ChatID), q) {
		return true
	}
	if a.Agent != nil {
		if strings.Contains(strings.ToLower(a.Agent.Name), q) ||
			strings.Contains(strings.ToLower(a.Agent.LocalizedName), q) {
			return true
		}
	}
	for _, m := range a.Messages {
		if strings.Contains(strings.ToLower(m.Content), q) {
			return true
		}
	}
	return false
}
