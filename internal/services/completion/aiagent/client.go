// Package aiagent provides the HTTP client for the hosted ai-agent
// completion service.
package aiagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hostdesk/livechat-service/internal/services/completion"
)

const (
	chatPath     = "/ai-agent/chat"
	validatePath = "/ai-agent/validate"

	maxErrorBody = 512
)

// ClientConfig holds the configuration for the ai-agent client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements completion.Completer over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ completion.Completer = (*Client)(nil)

type chatResponse struct {
	Response string `json:"response"`
}

type validateRequest struct {
	APIKey string `json:"apiKey"`
}

// NewClient creates a new ai-agent client.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Chat posts the conversation and returns the agent reply.
func (c *Client) Chat(ctx context.Context, req *completion.ChatRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is required")
	}
	if req.APIKey == "" {
		return "", completion.ErrMissingAPIKey
	}

	body := *req
	body.ChatHistory = completion.TrimHistory(req.ChatHistory)

	var resp chatResponse
	if err := c.post(ctx, chatPath, &body, &resp); err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Response)
	if text == "" {
		return "", completion.ErrEmptyResponse
	}
	return text, nil
}

// Validate asks the service whether apiKey is usable.
func (c *Client) Validate(ctx context.Context, apiKey string) (*completion.ValidateResult, error) {
	if apiKey == "" {
		return nil, completion.ErrMissingAPIKey
	}

	var result completion.ValidateResult
	if err := c.post(ctx, validatePath, &validateRequest{APIKey: apiKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
