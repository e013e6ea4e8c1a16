package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hostdesk/livechat-service/internal/core/docdb"
	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// ArchiveCollectionName is the name of the archived chats collection.
const ArchiveCollectionName = "chat_archive"

// archiveDocument is the stored form of an archived session. Seq orders
// documents by insertion, newest highest.
type archiveDocument struct {
	models.ArchivedSession `bson:",inline"`
	Seq                    int64 `bson:"seq"`
}

// ArchiveCollection implements docdb.ArchiveCollection for MongoDB.
type ArchiveCollection struct {
	collection *mongo.Collection
	lastSeq    atomic.Int64
	now        func() time.Time
}

var _ docdb.ArchiveCollection = (*ArchiveCollection)(nil)

// NewArchiveCollection wraps the archive collection of db.
func NewArchiveCollection(db *mongo.Database) *ArchiveCollection {
	return &ArchiveCollection{
		collection: db.Collection(ArchiveCollectionName),
		now:        time.Now,
	}
}

// nextSeq returns a strictly increasing sequence based on wall-clock nanos.
func (c *ArchiveCollection) nextSeq() int64 {
	for {
		last := c.lastSeq.Load()
		next := c.now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if c.lastSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

func toDocument(session *models.ArchivedSession, seq int64) archiveDocument {
	return archiveDocument{ArchivedSession: *session, Seq: seq}
}

// Insert upserts the session by chat id.
func (c *ArchiveCollection) Insert(ctx context.Context, session *models.ArchivedSession) error {
	if session == nil || session.ChatID == "" {
		return fmt.Errorf("chat ID is required")
	}

	doc := toDocument(session, c.nextSeq())
	_, err := c.collection.ReplaceOne(ctx, bson.M{"_id": session.ChatID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert archived chat: %w", err)
	}
	return nil
}

// List returns sessions newest first.
func (c *ArchiveCollection) List(ctx context.Context, limit int64) ([]models.ArchivedSession, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	cursor, err := c.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived chats: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []archiveDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode archived chats: %w", err)
	}

	sessions := make([]models.ArchivedSession, 0, len(docs))
	for _, doc := range docs {
		sessions = append(sessions, doc.ArchivedSession)
	}
	return sessions, nil
}

// Delete removes one session by chat id.
func (c *ArchiveCollection) Delete(ctx context.Context, chatID string) (bool, error) {
	result, err := c.collection.DeleteOne(ctx, bson.M{"_id": chatID})
	if err != nil {
		return false, fmt.Errorf("failed to delete archived chat: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteAll removes every session.
func (c *ArchiveCollection) DeleteAll(ctx context.Context) (int64, error) {
	result, err := c.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete archived chats: %w", err)
	}
	return result.DeletedCount, nil
}

// TrimTo keeps only the keep newest sessions.
func (c *ArchiveCollection) TrimTo(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetSkip(keep).
		SetProjection(bson.M{"_id": 1})

	cursor, err := c.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return 0, fmt.Errorf("failed to find archived chats to trim: %w", err)
	}
	defer cursor.Close(ctx)

	var stale []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &stale); err != nil {
		return 0, fmt.Errorf("failed to decode archived chats to trim: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(stale))
	for _, s := range stale {
		ids = append(ids, s.ID)
	}

	result, err := c.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("failed to trim archived chats: %w", err)
	}
	return result.DeletedCount, nil
}

// Count returns the number of stored sessions.
func (c *ArchiveCollection) Count(ctx context.Context) (int64, error) {
	count, err := c.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count archived chats: %w", err)
	}
	return count, nil
}

// EnsureIndexes creates the ordering and lookup indexes.
func (c *ArchiveCollection) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "seq", Value: -1}},
			Options: options.Index().SetName("idx_seq"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "archivedAt", Value: -1},
			},
			Options: options.Index().SetName("idx_status_archived_at"),
		},
	}

	if _, err := c.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.HasErrorCode(85) {
			return nil
		}
		return fmt.Errorf("failed to create archive indexes: %w", err)
	}
	return nil
}
