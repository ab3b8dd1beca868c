// Package materialize writes aggregate documents into the document store
// as a full-replace snapshot.
package materialize

import (
	"context"

	"go.uber.org/zap"

	"github.com/cineexplorer/cinedoc/internal/domain"
)

// DocumentStore is the destination contract. The mongo implementation
// lives in internal/docstore; tests substitute an in-memory store.
type DocumentStore interface {
	// Reset drops the destination collection.
	Reset(ctx context.Context) error
	// Insert writes one batch of documents.
	Insert(ctx context.Context, docs []domain.AggregateDocument) error
	// EnsureIndexes (re)creates the secondary lookup indexes.
	EnsureIndexes(ctx context.Context) error
}

// Materializer replaces the destination collection with the documents of
// one run. The collection is dropped once, before the first batch write,
// so a failed run leaves the old contents gone rather than mixed with a
// previous snapshot; recovery is a full re-run.
type Materializer struct {
	store   DocumentStore
	logger  *zap.Logger
	begun   bool
	written int64
}

// NewMaterializer creates a materializer over the given store.
func NewMaterializer(store DocumentStore, logger *zap.Logger) *Materializer {
	return &Materializer{store: store, logger: logger}
}

// Begin drops the destination collection. It runs at most once per run;
// Write and Finish call it implicitly if the caller did not.
func (m *Materializer) Begin(ctx context.Context) error {
	if m.begun {
		return nil
	}
	if err := m.store.Reset(ctx); err != nil {
		return err
	}
	m.begun = true
	return nil
}

// Write inserts one batch, dropping the destination collection first if
// this is the run's first write.
func (m *Materializer) Write(ctx context.Context, docs []domain.AggregateDocument) error {
	if len(docs) == 0 {
		return nil
	}
	if err := m.Begin(ctx); err != nil {
		return err
	}
	if err := m.store.Insert(ctx, docs); err != nil {
		return err
	}
	m.written += int64(len(docs))
	return nil
}

// Finish completes the run: it rebuilds the secondary indexes and returns
// the total number of documents written. A run that wrote nothing still
// resets the collection, so an empty source yields an empty snapshot
// rather than a stale one.
func (m *Materializer) Finish(ctx context.Context) (int64, error) {
	if err := m.Begin(ctx); err != nil {
		return 0, err
	}
	if err := m.store.EnsureIndexes(ctx); err != nil {
		return m.written, err
	}
	m.logger.Info("materialization finished", zap.Int64("documents", m.written))
	return m.written, nil
}

// Written returns the number of documents committed so far.
func (m *Materializer) Written() int64 {
	return m.written
}
