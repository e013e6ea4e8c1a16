// Package dotenv provides a vault backed by environment variables and an
// optional .env file.
package dotenv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"

	"github.com/hostdesk/livechat-service/internal/core/vault"
)

// Vault implements vault.Vault. Process environment variables win over
// values read from the file, and stored secrets win over both.
type Vault struct {
	mu      sync.RWMutex
	file    map[string]string
	secrets map[string]string
}

var _ vault.Vault = (*Vault)(nil)

// NewVault creates a vault. An empty envFile or a missing file is not an error.
func NewVault(envFile string) (*Vault, error) {
	v := &Vault{
		file:    map[string]string{},
		secrets: map[string]string{},
	}

	if envFile == "" {
		return v, nil
	}

	values, err := godotenv.Read(envFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}
	v.file = values
	return v, nil
}

// StoreSecret stores a secret in memory.
func (v *Vault) StoreSecret(_ context.Context, key string, value string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("secret key is required")
	}

	v.mu.Lock()
	v.secrets[key] = value
	v.mu.Unlock()

	return vault.SchemeDotEnv + key, nil
}

// GetSecret resolves a secret from memory, the environment, then the file.
func (v *Vault) GetSecret(_ context.Context, uri string) (string, error) {
	key := vault.KeyFromURI(uri)

	v.mu.RLock()
	defer v.mu.RUnlock()

	if value, ok := v.secrets[key]; ok {
		return value, nil
	}
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	if value, ok := v.file[key]; ok && value != "" {
		return value, nil
	}

	return "", fmt.Errorf("secret not found: %s", key)
}

// DeleteSecret removes a stored secret. Environment values are untouched.
func (v *Vault) DeleteSecret(_ context.Context, uri string) (bool, error) {
	key := vault.KeyFromURI(uri)

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.secrets[key]; !ok {
		return false, nil
	}
	delete(v.secrets, key)
	return true, nil
}

// Ping always succeeds.
func (v *Vault) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (v *Vault) Close() error {
	return nil
}
