// Package openai provides a completion backend that talks to an
// OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hostdesk/livechat-service/internal/services/completion"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// ClientConfig holds the configuration for the OpenAI completer.
type ClientConfig struct {
	// BaseURL overrides the API endpoint, e.g. for a compatible gateway.
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

// Client implements completion.Completer. The API key travels with each
// request, so an SDK client is built per call.
type Client struct {
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

var _ completion.Completer = (*Client)(nil)

// NewClient creates a new OpenAI completer.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: cfg.HTTPClient,
	}, nil
}

func (c *Client) sdk(apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	if c.httpClient != nil {
		config.HTTPClient = c.httpClient
	}
	return openai.NewClientWithConfig(config)
}

// Chat requests a single reply in the agent's voice.
func (c *Client) Chat(ctx context.Context, req *completion.ChatRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is required")
	}
	if req.APIKey == "" {
		return "", completion.ErrMissingAPIKey
	}

	resp, err := c.sdk(req.APIKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  buildMessages(req),
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", completion.ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", completion.ErrEmptyResponse
	}
	return text, nil
}

// Validate lists models with apiKey. An authentication failure is reported
// as an invalid key rather than an error.
func (c *Client) Validate(ctx context.Context, apiKey string) (*completion.ValidateResult, error) {
	if apiKey == "" {
		return nil, completion.ErrMissingAPIKey
	}

	_, err := c.sdk(apiKey).ListModels(ctx)
	if err == nil {
		return &completion.ValidateResult{Valid: true, Message: "API key is valid"}, nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden) {
		return &completion.ValidateResult{Valid: false, Message: apiErr.Message}, nil
	}
	return nil, fmt.Errorf("failed to validate API key: %w", err)
}

func buildMessages(req *completion.ChatRequest) []openai.ChatCompletionMessage {
	history := completion.TrimHistory(req.ChatHistory)
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(req),
	})
	for _, h := range history {
		role := openai.ChatMessageRoleUser
		if h.Role == completion.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: h.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})
	return messages
}

func systemPrompt(req *completion.ChatRequest) string {
	name := req.AgentName
	if req.AgentNameLocal != "" && req.AgentNameLocal != req.AgentName {
		name = fmt.Sprintf("%s (%s)", req.AgentName, req.AgentNameLocal)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a friendly customer support agent for a web hosting provider. ", name)
	b.WriteString("Answer questions about hosting plans, domains, pricing and technical support. ")
	b.WriteString("Keep replies short, at most three sentences.")
	if req.Language != "" {
		fmt.Fprintf(&b, " Reply in the language with code %q.", req.Language)
	}
	return b.String()
}
