package dto

import (
	"time"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// SessionResponse represents the chat session of a widget instance.
type SessionResponse struct {
	WidgetID string             `json:"widgetId"`
	Typing   bool               `json:"typing"`
	Session  models.ChatSession `json:"session"`
}

// SubmitMessageResponse represents the response for sending a message.
type SubmitMessageResponse struct {
	ChatID  string               `json:"chatId"`
	Status  models.SessionStatus `json:"status"`
	Message models.Message       `json:"message"`
}

// CloseChatResponse represents the response for closing a chat.
type CloseChatResponse struct {
	Archived *models.ArchivedSession `json:"archived,omitempty"`
}

// SettingsResponse represents the chat settings. The API key itself is never
// returned.
type SettingsResponse struct {
	models.Settings
	AIAgentConfigured bool `json:"aiAgentConfigured"`
}

// ValidateKeyResponse represents the result of a key validation.
type ValidateKeyResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// CompletionErrorResponse represents one recorded remote completion failure.
type CompletionErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	ChatID    string    `json:"chatId,omitempty"`
	Message   string    `json:"message"`
	Error     string    `json:"error"`
}

// CompletionErrorsResponse represents the recent remote completion failures.
type CompletionErrorsResponse struct {
	Errors []CompletionErrorResponse `json:"errors"`
	Total  int                       `json:"total"`
}

// ListChatsResponse represents the response for searching the archive.
type ListChatsResponse struct {
	Chats []models.ArchivedSession `json:"chats"`
	Total int                      `json:"total"`
}

// DeleteChatsResponse represents the response for clearing the archive.
type DeleteChatsResponse struct {
	Deleted int `json:"deleted"`
}
