// Package models contains domain models for the live support chat service.
package models

import "time"

// MessageKind represents who produced a message.
type MessageKind string

const (
	// KindUser represents a message typed by the visitor.
	KindUser MessageKind = "user"
	// KindAgent represents a message from the support agent.
	KindAgent MessageKind = "agent"
	// KindSystem represents an informational system line (queued, connected, ended).
	KindSystem MessageKind = "system"
)

// HasStatus reports whether messages of this kind carry a delivery status.
func (k MessageKind) HasStatus() bool {
	return k == KindUser || k == KindAgent
}

// MessageStatus represents the delivery status of a user or agent message.
type MessageStatus string

const (
	// StatusSent is the initial status of a message.
	StatusSent MessageStatus = "sent"
	// StatusDelivered means the message reached the other side.
	StatusDelivered MessageStatus = "delivered"
	// StatusRead means the message was read.
	StatusRead MessageStatus = "read"
)

// Next returns the status that follows s, or false if s is terminal or unknown.
func (s MessageStatus) Next() (MessageStatus, bool) {
	switch s {
	case StatusSent:
		return StatusDelivered, true
	case StatusDelivered:
		return StatusRead, true
	default:
		return "", false
	}
}

// Message represents a single line in a chat transcript.
type Message struct {
	ID        int64         `json:"id" bson:"id"`
	Kind      MessageKind   `json:"kind" bson:"kind"`
	Content   string        `json:"content" bson:"content"`
	Status    MessageStatus `json:"status,omitempty" bson:"status,omitempty"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
}
