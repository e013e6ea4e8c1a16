// Package settings holds the process-wide chat configuration and the
// completion API credential.
package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	domainerrors "github.com/hostdesk/livechat-service/internal/domain/errors"
	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// Public is the settings view served to the chat widget.
type Public struct {
	models.Settings
	AIAgentConfigured bool `json:"aiAgentConfigured"`
}

// Update is a partial settings change. Nil fields are left unchanged.
type Update struct {
	ChatEnabled      *bool   `json:"chatEnabled,omitempty"`
	QueueAssignTime  *int64  `json:"queueAssignTime,omitempty"`
	TypingStartDelay *int64  `json:"typingStartDelay,omitempty"`
	ReplyTimePerWord *int64  `json:"replyTimePerWord,omitempty"`
	FollowUpTimeout  *int64  `json:"followUpTimeout,omitempty"`
	EndChatTimeout   *int64  `json:"endChatTimeout,omitempty"`
	APIKey           *string `json:"apiKey,omitempty"`
}

// Service provides the current settings.
type Service interface {
	// Load replaces the in-memory state with the persisted one, if any.
	Load(ctx context.Context) error

	// Get returns the settings in effect.
	Get() models.Settings

	// APIKey returns the completion API credential, or "".
	APIKey() string

	// HasAPIKey reports whether a credential is configured.
	HasAPIKey() bool

	// Public returns the widget-facing view.
	Public() Public

	// Update applies a partial change and persists it.
	Update(ctx context.Context, update *Update) (models.Settings, error)

	// SetAPIKey replaces the credential. An empty key clears it.
	SetAPIKey(ctx context.Context, apiKey string) error
}

// Config holds the configuration for the settings service.
type Config struct {
	Repository    Repository
	Defaults      models.Settings
	DefaultAPIKey string
}

// service implements the Service interface.
type service struct {
	repo Repository

	mu       sync.RWMutex
	settings models.Settings
	apiKey   string
}

// NewService creates a settings service seeded with the defaults.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default settings: %w", err)
	}

	return &service{
		repo:     cfg.Repository,
		settings: cfg.Defaults,
		apiKey:   strings.TrimSpace(cfg.DefaultAPIKey),
	}, nil
}

// Load reads the persisted state once at startup. Storage failures keep the
// defaults.
func (s *service) Load(ctx context.Context) error {
	state, err := s.repo.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load chat settings, using defaults")
		return nil
	}
	if state == nil {
		return nil
	}
	if err := state.Settings.Validate(); err != nil {
		log.Warn().Err(err).Msg("ignoring invalid persisted chat settings")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = state.Settings
	if state.APIKey != "" {
		s.apiKey = state.APIKey
	}
	return nil
}

func (s *service) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *service) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

func (s *service) HasAPIKey() bool {
	return s.APIKey() != ""
}

func (s *service) Public() Public {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Public{Settings: s.settings, AIAgentConfigured: s.apiKey != ""}
}

// Update validates the merged settings before applying them.
func (s *service) Update(ctx context.Context, update *Update) (models.Settings, error) {
	if update == nil {
		return models.Settings{}, domainerrors.NewValidationError("settings update is required", "")
	}

	s.mu.Lock()
	next := s.settings
	applyInt(&next.QueueAssignTime, update.QueueAssignTime)
	applyInt(&next.TypingStartDelay, update.TypingStartDelay)
	applyInt(&next.ReplyTimePerWord, update.ReplyTimePerWord)
	applyInt(&next.FollowUpTimeout, update.FollowUpTimeout)
	applyInt(&next.EndChatTimeout, update.EndChatTimeout)
	if update.ChatEnabled != nil {
		next.ChatEnabled = *update.ChatEnabled
	}

	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return models.Settings{}, domainerrors.NewValidationError("invalid settings", err.Error())
	}

	s.settings = next
	if update.APIKey != nil {
		s.apiKey = strings.TrimSpace(*update.APIKey)
	}
	state := &Stored{Settings: s.settings, APIKey: s.apiKey}
	s.mu.Unlock()

	s.persist(ctx, state)
	return next, nil
}

func (s *service) SetAPIKey(ctx context.Context, apiKey string) error {
	s.mu.Lock()
	s.apiKey = strings.TrimSpace(apiKey)
	state := &Stored{Settings: s.settings, APIKey: s.apiKey}
	s.mu.Unlock()

	s.persist(ctx, state)
	return nil
}

// persist saves state; failures are logged and the in-memory state stays.
func (s *service) persist(ctx context.Context, state *Stored) {
	if err := s.repo.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to persist chat settings")
	}
}

func applyInt(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}
