// Package completion defines the remote chat completion backend used to
// generate agent replies.
package completion

import (
	"context"
	"errors"
)

// MaxHistory is the number of prior transcript entries sent with a request.
const MaxHistory = 10

// Provider names a completion backend.
type Provider string

const (
	// ProviderAIAgent is the hosted ai-agent HTTP service.
	ProviderAIAgent Provider = "aiagent"
	// ProviderOpenAI talks to an OpenAI-compatible API directly.
	ProviderOpenAI Provider = "openai"
)

// Role of a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryEntry is one prior turn of the conversation.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks the backend for the agent's next reply.
type ChatRequest struct {
	APIKey         string         `json:"apiKey"`
	Message        string         `json:"message"`
	AgentName      string         `json:"agentName"`
	AgentNameLocal string         `json:"agentNameLocal"`
	Language       string         `json:"language"`
	ChatHistory    []HistoryEntry `json:"chatHistory"`
}

// ValidateResult reports whether an API key is accepted by the backend.
type ValidateResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ErrMissingAPIKey is returned when a request carries no credential.
var ErrMissingAPIKey = errors.New("API key is required")

// ErrEmptyResponse is returned when the backend answers without content.
var ErrEmptyResponse = errors.New("completion response is empty")

// Completer produces agent replies and validates credentials.
type Completer interface {
	// Chat returns the reply text for req.
	Chat(ctx context.Context, req *ChatRequest) (string, error)

	// Validate checks apiKey against the backend.
	Validate(ctx context.Context, apiKey string) (*ValidateResult, error)
}

// TrimHistory returns the last MaxHistory entries of history.
func TrimHistory(history []HistoryEntry) []HistoryEntry {
	if len(history) <= MaxHistory {
		return history
	}
	return history[len(history)-MaxHistory:]
}
