package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hostdesk/livechat-service/internal/core/cache"
	"github.com/hostdesk/livechat-service/internal/core/docdb"
	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// DefaultListKey is the cache list holding archived sessions.
const DefaultListKey = "livechat:archive"

// Repository persists the archive collection, newest first.
type Repository interface {
	// Load returns every stored session, newest first.
	Load(ctx context.Context) ([]models.ArchivedSession, error)

	// Prepend stores session as the newest entry and keeps at most limit entries.
	Prepend(ctx context.Context, session models.ArchivedSession, limit int) error

	// Delete removes the session with chatID. Missing ids are not an error.
	Delete(ctx context.Context, chatID string) error

	// DeleteAll removes every session.
	DeleteAll(ctx context.Context) error
}

// MemoryRepository keeps the collection in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions []models.ArchivedSession
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(context.Context) ([]models.ArchivedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ArchivedSession(nil), r.sessions...), nil
}

func (r *MemoryRepository) Prepend(_ context.Context, session models.ArchivedSession, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = append([]models.ArchivedSession{session}, r.sessions...)
	if limit > 0 && len(r.sessions) > limit {
		r.sessions = r.sessions[:limit]
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if s.ChatID != chatID {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	return nil
}

func (r *MemoryRepository) DeleteAll(context.Context) error {
	r.mu.Lock()
	r.sessions = nil
	r.mu.Unlock()
	return nil
}

// cacheRepository stores JSON-encoded sessions in a capped cache list.
type cacheRepository struct {
	cache cache.Cache
	key   string
}

// NewCacheRepository creates a repository over a cache list at key.
func NewCacheRepository(c cache.Cache, key string) (Repository, error) {
	if c == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if key == "" {
		key = DefaultListKey
	}
	return &cacheRepository{cache: c, key: key}, nil
}

func (r *cacheRepository) Load(ctx context.Context) ([]models.ArchivedSession, error) {
	raw, err := r.cache.Range(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive: %w", err)
	}

	sessions := make([]models.ArchivedSession, 0, len(raw))
	for _, item := range raw {
		var s models.ArchivedSession
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *cacheRepository) Prepend(ctx context.Context, session models.ArchivedSession, limit int) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal archived session: %w", err)
	}
	if err := r.cache.PushCapped(ctx, r.key, data, int64(limit)); err != nil {
		return fmt.Errorf("failed to store archived session: %w", err)
	}
	return nil
}

// Delete finds the stored encoding of chatID and removes it.
func (r *cacheRepository) Delete(ctx context.Context, chatID string) error {
	raw, err := r.cache.Range(ctx, r.key)
	if err != nil {
		return fmt.Errorf("failed to load archive: %w", err)
	}

	for _, item := range raw {
		var probe struct {
			ChatID string `json:"chatId"`
		}
		if err := json.Unmarshal(item, &probe); err != nil || probe.ChatID != chatID {
			continue
		}
		if _, err := r.cache.RemoveValue(ctx, r.key, item); err != nil {
			return fmt.Errorf("failed to delete archived session: %w", err)
		}
	}
	return nil
}

func (r *cacheRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.cache.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}

// docdbRepository stores sessions in the document database.
type docdbRepository struct {
	collection docdb.ArchiveCollection
}

// NewDocDBRepository creates a repository over the archive collection.
func NewDocDBRepository(collection docdb.ArchiveCollection) (Repository, error) {
	if collection == nil {
		return nil, fmt.Errorf("archive collection is required")
	}
	return &docdbRepository{collection: collection}, nil
}

func (r *docdbRepository) Load(ctx context.Context) ([]models.ArchivedSession, error) {
	sessions, err := r.collection.List(ctx, MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive: %w", err)
	}
	return sessions, nil
}

func (r *docdbRepository) Prepend(ctx context.Context, session models.ArchivedSession, limit int) error {
	if err := r.collection.Insert(ctx, &session); err != nil {
		return err
	}
	if limit > 0 {
		if _, err := r.collection.TrimTo(ctx, int64(limit)); err != nil {
			return err
		}
	}
	return nil
}

func (r *docdbRepository) Delete(ctx context.Context, chatID string) error {
	_, err := r.collection.Delete(ctx, chatID)
	return err
}

func (r *docdbRepository) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteAll(ctx)
	return err
}
