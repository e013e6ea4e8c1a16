package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hostdesk/livechat-service/internal/core/cache"
	"github.com/hostdesk/livechat-service/internal/domain/models"
	"github.com/hostdesk/livechat-service/internal/pkg/encryption"
)

// DefaultCacheKey is where the encrypted settings blob is stored.
const DefaultCacheKey = "livechat:settings"

// Stored is the persisted settings state.
type Stored struct {
	Settings models.Settings `json:"settings"`
	APIKey   string          `json:"apiKey,omitempty"`
}

// Repository loads and saves the settings state.
type Repository interface {
	// Load returns the saved state, or nil if nothing was saved.
	Load(ctx context.Context) (*Stored, error)

	// Save replaces the saved state.
	Save(ctx context.Context, state *Stored) error

	// Close releases repository resources.
	Close() error
}

// CacheRepositoryConfig holds the configuration for a CacheRepository.
type CacheRepositoryConfig struct {
	Cache     cache.Cache
	Encryptor encryption.Encryptor
	Key       string
}

// cacheRepository stores the state as an encrypted JSON blob without expiry.
type cacheRepository struct {
	cache     cache.Cache
	encryptor encryption.Encryptor
	key       string
}

// NewCacheRepository creates a repository backed by the cache.
func NewCacheRepository(cfg *CacheRepositoryConfig) (Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg.Encryptor == nil {
		return nil, fmt.Errorf("encryptor is required")
	}

	key := cfg.Key
	if key == "" {
		key = DefaultCacheKey
	}

	return &cacheRepository{
		cache:     cfg.Cache,
		encryptor: cfg.Encryptor,
		key:       key,
	}, nil
}

// Load reads the blob. An entry that no longer decrypts (e.g. the key was
// rotated) or decodes is deleted and reported as missing.
func (r *cacheRepository) Load(ctx context.Context) (*Stored, error) {
	encrypted, err := r.cache.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings from cache: %w", err)
	}
	if encrypted == nil {
		return nil, nil
	}

	decrypted, err := r.encryptor.Decrypt(string(encrypted))
	if err != nil {
		_, _ = r.cache.Delete(ctx, r.key)
		return nil, nil
	}

	var state Stored
	if err := json.Unmarshal(decrypted, &state); err != nil {
		_, _ = r.cache.Delete(ctx, r.key)
		return nil, nil
	}
	return &state, nil
}

// Save encrypts and stores the state.
func (r *cacheRepository) Save(ctx context.Context, state *Stored) error {
	if state == nil {
		return fmt.Errorf("settings state is required")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	encrypted, err := r.encryptor.Encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt settings: %w", err)
	}

	if err := r.cache.Set(ctx, r.key, []byte(encrypted), cache.NoExpiration); err != nil {
		return fmt.Errorf("failed to store settings in cache: %w", err)
	}
	return nil
}

// Close is a no-op; the cache is owned by the caller.
func (r *cacheRepository) Close() error {
	return nil
}

// MemoryRepository keeps the state in process memory.
type MemoryRepository struct {
	mu    sync.Mutex
	state *Stored
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load returns a copy of the saved state.
func (r *MemoryRepository) Load(context.Context) (*Stored, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return nil, nil
	}
	state := *r.state
	return &state, nil
}

// Save stores a copy of state.
func (r *MemoryRepository) Save(_ context.Context, state *Stored) error {
	if state == nil {
		return fmt.Errorf("settings state is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *state
	r.state = &copied
	return nil
}

// Close is a no-op.
func (r *MemoryRepository) Close() error {
	return nil
}
