// Package archive keeps the capped collection of finished chat sessions.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	domainerrors "github.com/hostdesk/livechat-service/internal/domain/errors"
	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/pkg/observability"
)

// MaxEntries is the archive capacity. The oldest entry is evicted first.
const MaxEntries = 100

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Query  string
	Status models.ArchiveStatus
}

// Service manages archived sessions. The in-memory collection is
// authoritative; the repository mirrors it.
type Service interface {
	// Load replaces the collection with the persisted one.
	Load(ctx context.Context) error

	// Archive snapshots session and stores it as the newest entry.
	Archive(ctx context.Context, session *models.ChatSession, status models.ArchiveStatus) (models.ArchivedSession, error)

	// Get returns one archived session.
	Get(chatID string) (models.ArchivedSession, error)

	// List returns matching sessions, newest first.
	List(filter Filter) []models.ArchivedSession

	// Delete removes one session.
	Delete(ctx context.Context, chatID string) error

	// DeleteAll removes every session and returns how many there were.
	DeleteAll(ctx context.Context) int

	// Export serializes the whole collection as JSON.
	Export() ([]byte, error)

	// ExportFilename returns the download name for an export made now.
	ExportFilename() string

	// Len returns the collection size.
	Len() int
}

// Config holds the configuration for the archive service.
type Config struct {
	Repository Repository
	Clock      clock.Clock
	MaxEntries int
}

// service implements the Service interface.
type service struct {
	repo       Repository
	clock      clock.Clock
	maxEntries int

	mu       sync.RWMutex
	sessions []models.ArchivedSession
}

// NewService creates a new archive service.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = MaxEntries
	}

	return &service{
		repo:       cfg.Repository,
		clock:      clk,
		maxEntries: maxEntries,
	}, nil
}

func (s *service) Load(ctx context.Context) error {
	sessions, err := s.repo.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load chat archive, starting empty")
		return nil
	}
	if len(sessions) > s.maxEntries {
		sessions = sessions[:s.maxEntries]
	}

	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
	return nil
}

func (s *service) Archive(ctx context.Context, session *models.ChatSession, status models.ArchiveStatus) (models.ArchivedSession, error) {
	if session == nil || session.ChatID == "" {
		return models.ArchivedSession{}, domainerrors.NewValidationError("session is required", "")
	}
	if !status.IsValid() {
		return models.ArchivedSession{}, domainerrors.NewValidationError("invalid archive status", string(status))
	}

	record := models.NewArchivedSession(session, status, s.clock.Now())

	s.mu.Lock()
	replaced := s.indexLocked(record.ChatID) >= 0
	next := make([]models.ArchivedSession, 0, len(s.sessions)+1)
	next = append(next, record)
	for _, existing := range s.sessions {
		if existing.ChatID != record.ChatID {
			next = append(next, existing)
		}
	}
	if len(next) > s.maxEntries {
		next = next[:s.maxEntries]
	}
	s.sessions = next
	s.mu.Unlock()

	if replaced {
		if err := s.repo.Delete(ctx, record.ChatID); err != nil {
			log.Error().Err(err).Str("chat_id", record.ChatID).Msg("failed to replace archived chat")
		}
	}
	if err := s.repo.Prepend(ctx, record, s.maxEntries); err != nil {
		log.Error().Err(err).Str("chat_id", record.ChatID).Msg("failed to persist archived chat")
	}

	observability.RecordSessionArchived(string(status))
	log.Info().
		Str("chat_id", record.ChatID).
		Str("status", string(status)).
		Int("messages", len(record.Messages)).
		Msg("chat archived")

	return record, nil
}

func (s *service) Get(chatID string) (models.ArchivedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(chatID); i >= 0 {
		return s.sessions[i], nil
	}
	return models.ArchivedSession{}, domainerrors.NewNotFoundError("chat", chatID)
}

func (s *service) List(filter Filter) []models.ArchivedSession {
	query := strings.TrimSpace(filter.Query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ArchivedSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		if filter.Status != "" && session.Status != filter.Status {
			continue
		}
		if !session.Matches(query) {
			continue
		}
		out = append(out, session)
	}
	return out
}

func (s *service) Delete(ctx context.Context, chatID string) error {
	s.mu.Lock()
	i := s.indexLocked(chatID)
	if i < 0 {
		s.mu.Unlock()
		return domainerrors.NewNotFoundError("chat", chatID)
	}
	s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, chatID); err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("failed to delete archived chat from storage")
	}
	return nil
}

func (s *service) DeleteAll(ctx context.Context) int {
	s.mu.Lock()
	n := len(s.sessions)
	s.sessions = nil
	s.mu.Unlock()

	if err := s.repo.DeleteAll(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear chat archive storage")
	}
	return n
}

func (s *service) Export() ([]byte, error) {
	s.mu.RLock()
	sessions := s.sessions
	if sessions == nil {
		sessions = []models.ArchivedSession{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	s.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("failed to marshal archive: %w", err)
	}
	return data, nil
}

func (s *service) ExportFilename() string {
	return ExportFilename(s.clock.Now())
}

func (s *service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *service) indexLocked(chatID string) int {
	for i, session := range s.sessions {
		if session.ChatID == chatID {
			return i
		}
	}
	return -1
}

// ExportFilename formats the export download name for t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("chat-history-%s.json", t.UTC().Format("2006-01-02"))
}
