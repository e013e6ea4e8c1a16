// Package vault defines the secret store used for credentials such as the
// AI agent API key.
package vault

import (
	"context"
)

// Vault defines the interface for secret operations.
type Vault interface {
	// StoreSecret stores a secret and returns its URI.
	StoreSecret(ctx context.Context, key string, value string) (string, error)

	// GetSecret retrieves a secret by URI.
	// Returns an error if the secret does not exist.
	GetSecret(ctx context.Context, uri string) (string, error)

	// DeleteSecret deletes a secret.
	// Returns true if the secret existed.
	DeleteSecret(ctx context.Context, uri string) (bool, error)

	// Ping checks if the vault is reachable.
	Ping(ctx context.Context) error

	// Close releases vault resources.
	Close() error
}
