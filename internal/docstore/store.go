package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cineexplorer/cinedoc/internal/domain"
	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
)

// Store implements the materializer's DocumentStore contract on the
// destination collection.
type Store struct {
	coll *mongo.Collection
}

// NewStore creates a store over the given collection.
func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Reset drops the destination collection so the new snapshot starts from
// an empty state.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.coll.Drop(ctx); err != nil {
		return cerrors.Wrap(cerrors.KindWriteFailure, "docstore.Reset", "failed to drop destination collection", err)
	}
	return nil
}

// Insert writes one batch of documents with an ordered insert, keeping the
// committed prefix well-defined when a batch fails mid-way.
func (s *Store) Insert(ctx context.Context, docs []domain.AggregateDocument) error {
	if len(docs) == 0 {
		return nil
	}
	payload := make([]interface{}, len(docs))
	for i := range docs {
		payload[i] = docs[i]
	}
	if _, err := s.coll.InsertMany(ctx, payload, options.InsertMany().SetOrdered(true)); err != nil {
		return cerrors.Wrap(cerrors.KindWriteFailure, "docstore.Insert", "failed to insert document batch", err)
	}
	return nil
}

// EnsureIndexes (re)creates the secondary lookup indexes on embedded cast
// names and genres. The _id index covers identifier lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "cast.name", Value: 1}}},
		{Keys: bson.D{{Key: "genres", Value: 1}}},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return cerrors.Wrap(cerrors.KindWriteFailure, "docstore.EnsureIndexes", "failed to create indexes", err)
	}
	return nil
}

// Count returns the number of documents in the destination collection.
func (s *Store) Count(ctx context.Context) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, cerrors.Wrap(cerrors.KindSourceUnavailable, "docstore.Count", "failed to count documents", err)
	}
	return count, nil
}
