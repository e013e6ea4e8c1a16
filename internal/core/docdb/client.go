// Package docdb defines the document database used for long-term chat
// archive storage.
package docdb

import (
	"context"
)

// Client defines the interface for a document database client.
type Client interface {
	// Archive returns the archived chats collection.
	Archive() ArchiveCollection

	// EnsureIndexes creates the indexes the collections rely on.
	EnsureIndexes(ctx context.Context) error

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}
