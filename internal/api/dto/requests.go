// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// SubmitMessageRequest represents the request body for sending a chat message.
type SubmitMessageRequest struct {
	Content  string `json:"content" binding:"required"`
	UserName string `json:"userName" binding:"omitempty,max=100"`
}

// UpdateSettingsRequest is a partial settings change. Omitted fields are
// left unchanged; an empty apiKey clears the stored credential.
type UpdateSettingsRequest struct {
	ChatEnabled      *bool   `json:"chatEnabled,omitempty"`
	QueueAssignTime  *int64  `json:"queueAssignTime,omitempty"`
	TypingStartDelay *int64  `json:"typingStartDelay,omitempty"`
	ReplyTimePerWord *int64  `json:"replyTimePerWord,omitempty"`
	FollowUpTimeout  *int64  `json:"followUpTimeout,omitempty"`
	EndChatTimeout   *int64  `json:"endChatTimeout,omitempty"`
	APIKey           *string `json:"apiKey,omitempty"`
}

// ValidateKeyRequest represents the request body for validating a completion
// API key. An empty key validates the stored one.
type ValidateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// ListChatsQuery represents the query parameters for searching the archive.
type ListChatsQuery struct {
	Query  string `form:"q"`
	Status string `form:"status" binding:"omitempty,oneof=completed closed_by_user"`
}
