package chat

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/logging"
)

var (
	ErrInvalidWidgetID = errors.New("widget id must be 1-64 characters of letters, digits, '-', '_' or '.'")
	ErrTooManyWidgets  = errors.New("too many active widget instances")
)

// DefaultMaxWidgets bounds the number of controllers a registry creates.
const DefaultMaxWidgets = 10000

// RegistryConfig holds the configuration for a registry. Controller is the
// template for every controller; its WidgetID is ignored.
type RegistryConfig struct {
	Controller Config
	MaxWidgets int
}

// Registry hands out one controller per widget instance, created on first use.
// When it is full, idle controllers are released to make room.
type Registry struct {
	template   Config
	maxWidgets int
	logger     zerolog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg *RegistryConfig) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Controller.validate(); err != nil {
		return nil, err
	}

	maxWidgets := cfg.MaxWidgets
	if maxWidgets <= 0 {
		maxWidgets = DefaultMaxWidgets
	}

	return &Registry{
		template:    cfg.Controller,
		maxWidgets:  maxWidgets,
		logger:      logging.Component("registry"),
		controllers: make(map[string]*Controller),
	}, nil
}

// Get returns the controller for widgetID, creating it if needed.
func (r *Registry) Get(widgetID string) (*Controller, error) {
	if !ValidWidgetID(widgetID) {
		return nil, ErrInvalidWidgetID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[widgetID]; ok {
		return c, nil
	}
	if len(r.controllers) >= r.maxWidgets && r.releaseIdleLocked() == 0 {
		return nil, ErrTooManyWidgets
	}

	cfg := r.template
	cfg.WidgetID = widgetID
	if r.template.Rand != nil {
		// Controllers lock independently, so each needs its own source.
		cfg.Rand = rand.New(rand.NewSource(r.template.Rand.Int63()))
	}

	c, err := NewController(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}
	r.controllers[widgetID] = c
	return c, nil
}

// Submit sends a user message to the controller for widgetID, creating it if
// needed.
func (r *Registry) Submit(widgetID, content, userName string) (*Controller, models.Message, error) {
	for {
		ctrl, err := r.Get(widgetID)
		if err != nil {
			return nil, models.Message{}, err
		}
		msg, err := ctrl.Submit(content, userName)
		if errors.Is(err, ErrRetired) {
			continue
		}
		return ctrl, msg, err
	}
}

// Subscribe opens an event stream on the controller for widgetID, creating it
// if needed. The controller is not released while the stream is open.
func (r *Registry) Subscribe(widgetID string) (*Controller, <-chan Event, func(), error) {
	for {
		ctrl, err := r.Get(widgetID)
		if err != nil {
			return nil, nil, nil, err
		}
		events, cancel, err := ctrl.subscribe()
		if errors.Is(err, ErrRetired) {
			continue
		}
		return ctrl, events, cancel, err
	}
}

// releaseIdleLocked drops every controller without a session, subscriber or
// pending timer and returns how many were dropped.
func (r *Registry) releaseIdleLocked() int {
	released := 0
	for id, c := range r.controllers {
		if c.retireIfIdle() {
			delete(r.controllers, id)
			released++
		}
	}
	if released > 0 {
		r.logger.Debug().Int("released", released).Int("remaining", len(r.controllers)).Msg("Released idle widget instances")
	}
	return released
}

// Lookup returns the controller for widgetID without creating one.
func (r *Registry) Lookup(widgetID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.controllers[widgetID]
	return c, ok
}

// Len returns the number of controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Shutdown resets every session so no timer fires after it returns.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		controllers = append(controllers, c)
	}
	r.mu.Unlock()

	for _, c := range controllers {
		c.Reset()
	}
}

// ValidWidgetID reports whether id is an acceptable widget instance id.
func ValidWidgetID(id string) bool {
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for _, ch := range id {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}
