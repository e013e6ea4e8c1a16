// Package responder produces agent replies, either from the remote completion
// backend or from a local keyword-driven fallback corpus.
package responder

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/pkg/observability"
	"github.com/hostdesk/livechat-service/internal/services/completion"
)

// Source tells where a reply came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Request is the context for one reply.
type Request struct {
	ChatID string
	// History is the transcript before Message.
	History []models.Message
	Message string
	Agent   models.AgentProfile
}

// Reply is a resolved agent answer.
type Reply struct {
	Text     string
	Source   Source
	Category Category
}

// KeySource provides the current completion credential.
type KeySource interface {
	APIKey() string
}

// Resolver produces replies. Resolve never fails.
type Resolver interface {
	// Resolve returns a reply for req, falling back locally on any remote problem.
	Resolve(ctx context.Context, req *Request) Reply

	// Fallback returns a local reply for message.
	Fallback(message string) Reply

	// Errors returns recent remote failures, newest first.
	Errors() []ErrorEntry
}

// Config holds the configuration for the resolver.
type Config struct {
	Completer completion.Completer
	Keys      KeySource
	Language  string
	// Rand picks fallback responses. Defaults to a time-seeded source.
	Rand         *rand.Rand
	Clock        clock.Clock
	ErrorLogSize int
}

// resolver implements the Resolver interface.
type resolver struct {
	completer completion.Completer
	keys      KeySource
	language  string
	clock     clock.Clock
	errors    *ErrorLog

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewResolver creates a new resolver. Completer may be nil, which disables
// remote completion.
func NewResolver(cfg *Config) (Resolver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Keys == nil {
		return nil, fmt.Errorf("key source is required")
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &resolver{
		completer: cfg.Completer,
		keys:      cfg.Keys,
		language:  cfg.Language,
		clock:     clk,
		errors:    NewErrorLog(cfg.ErrorLogSize),
		rand:      rng,
	}, nil
}

func (r *resolver) Resolve(ctx context.Context, req *Request) Reply {
	category := Classify(req.Message)

	apiKey := r.keys.APIKey()
	if apiKey == "" || r.completer == nil {
		return r.pick(category)
	}

	start := time.Now()
	text, err := r.callRemote(ctx, apiKey, req)
	if err != nil {
		if ctx.Err() == nil {
			observability.RecordCompletion("error", time.Since(start))
			r.recordFailure(req, err)
		}
		return r.pick(category)
	}

	observability.RecordCompletion("ok", time.Since(start))
	observability.RecordReply(string(SourceAI), string(category))
	return Reply{Text: text, Source: SourceAI, Category: category}
}

func (r *resolver) Fallback(message string) Reply {
	return r.pick(Classify(message))
}

func (r *resolver) Errors() []ErrorEntry {
	return r.errors.Entries()
}

// callRemote converts panics in the completer into errors.
func (r *resolver) callRemote(ctx context.Context, apiKey string, req *Request) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("completion panicked: %v", p)
		}
	}()

	text, err = r.completer.Chat(ctx, &completion.ChatRequest{
		APIKey:         apiKey,
		Message:        req.Message,
		AgentName:      req.Agent.Name,
		AgentNameLocal: req.Agent.LocalizedName,
		Language:       r.language,
		ChatHistory:    BuildHistory(req.History),
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", completion.ErrEmptyResponse
	}
	return text, nil
}

func (r *resolver) recordFailure(req *Request, err error) {
	r.errors.Add(ErrorEntry{
		Timestamp: r.clock.Now(),
		ChatID:    req.ChatID,
		Message:   req.Message,
		Error:     err.Error(),
	})
	log.Warn().
		Err(err).
		Str("chat_id", req.ChatID).
		Msg("remote completion failed, using fallback reply")
}

func (r *resolver) pick(category Category) Reply {
	pool := fallbackResponses[category]

	r.randMu.Lock()
	idx := r.rand.Intn(len(pool))
	r.randMu.Unlock()

	observability.RecordReply(string(SourceFallback), string(category))
	return Reply{Text: pool[idx], Source: SourceFallback, Category: category}
}

// BuildHistory converts the last completion.MaxHistory user and agent
// messages of a transcript into completion history. System messages are
// skipped.
func BuildHistory(messages []models.Message) []completion.HistoryEntry {
	history := make([]completion.HistoryEntry, 0, len(messages))
	for _, m := range messages {
		switch m.Kind {
		case models.KindUser:
			history = append(history, completion.HistoryEntry{Role: completion.RoleUser, Content: m.Content})
		case models.KindAgent:
			history = append(history, completion.HistoryEntry{Role: completion.RoleAssistant, Content: m.Content})
		}
	}
	return completion.TrimHistory(history)
}
