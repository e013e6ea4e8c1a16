package docdb

import (
	"context"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// ArchiveCollection stores archived chat sessions keyed by chat id.
type ArchiveCollection interface {
	// Insert stores a session, replacing any existing one with the same chat id.
	Insert(ctx context.Context, session *models.ArchivedSession) error

	// List returns up to limit sessions, most recently archived first.
	// A limit of 0 returns every session.
	List(ctx context.Context, limit int64) ([]models.ArchivedSession, error)

	// Delete removes a session. Returns true if it existed.
	Delete(ctx context.Context, chatID string) (bool, error)

	// DeleteAll removes every session and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// TrimTo deletes all but the keep most recent sessions.
	TrimTo(ctx context.Context, keep int64) (int64, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int64, error)
}
