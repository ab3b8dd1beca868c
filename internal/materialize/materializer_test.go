package materialize

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/cineexplorer/cinedoc/internal/domain"
)

type fakeStore struct {
	resets    int
	inserts   int
	indexed   int
	docs      []domain.AggregateDocument
	insertErr error
	resetErr  error
	indexErr  error
}

func (f *fakeStore) Reset(ctx context.Context) error {
	f.resets++
	if f.resetErr != nil {
		return f.resetErr
	}
	f.docs = nil
	return nil
}

func (f *fakeStore) Insert(ctx context.Context, docs []domain.AggregateDocument) error {
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.docs = append(f.docs, docs...)
	return nil
}

func (f *fakeStore) EnsureIndexes(ctx context.Context) error {
	f.indexed++
	return f.indexErr
}

func docsOf(ids ...string) []domain.AggregateDocument {
	out := make([]domain.AggregateDocument, len(ids))
	for i, id := range ids {
		out[i] = domain.AggregateDocument{ID: id}
	}
	return out
}

func TestMaterializerBeginRunsOnce(t *testing.T) {
	store := &fakeStore{docs: docsOf("stale")}
	m := NewMaterializer(store, zap.NewNop())
	ctx := context.Background()

	if err := m.Begin(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Begin(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Write(ctx, docsOf("tt1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.resets != 1 {
		t.Fatalf("expected exactly one reset, got %d", store.resets)
	}
}

func TestMaterializerDropsOnceBeforeFirstWrite(t *testing.T) {
	store := &fakeStore{docs: docsOf("stale")}
	m := NewMaterializer(store, zap.NewNop())
	ctx := context.Background()

	if err := m.Write(ctx, docsOf("tt1", "tt2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Write(ctx, docsOf("tt3")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.resets != 1 {
		t.Fatalf("expected exactly one reset, got %d", store.resets)
	}
	if len(store.docs) != 3 {
		t.Fatalf("expected 3 documents after replacing stale contents, got %d", len(store.docs))
	}
}

func TestMaterializerFinishReportsTotal(t *testing.T) {
	store := &fakeStore{}
	m := NewMaterializer(store, zap.NewNop())
	ctx := context.Background()

	if err := m.Write(ctx, docsOf("tt1", "tt2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	written, err := m.Finish(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected 2 written, got %d", written)
	}
	if store.indexed != 1 {
		t.Fatalf("expected indexes rebuilt once, got %d", store.indexed)
	}
}

func TestMaterializerEmptyRunStillResets(t *testing.T) {
	store := &fakeStore{docs: docsOf("stale")}
	m := NewMaterializer(store, zap.NewNop())

	written, err := m.Finish(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 0 {
		t.Fatalf("expected 0 written, got %d", written)
	}
	if store.resets != 1 || len(store.docs) != 0 {
		t.Fatalf("empty run must leave an empty snapshot, resets=%d docs=%d", store.resets, len(store.docs))
	}
}

func TestMaterializerSkipsEmptyBatches(t *testing.T) {
	store := &fakeStore{}
	m := NewMaterializer(store, zap.NewNop())

	if err := m.Write(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.resets != 0 || store.inserts != 0 {
		t.Fatalf("empty batch must not touch the store, resets=%d inserts=%d", store.resets, store.inserts)
	}
}

func TestMaterializerInsertFailureKeepsCount(t *testing.T) {
	insertErr := errors.New("bulk write failed")
	store := &fakeStore{}
	m := NewMaterializer(store, zap.NewNop())
	ctx := context.Background()

	if err := m.Write(ctx, docsOf("tt1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.insertErr = insertErr
	if err := m.Write(ctx, docsOf("tt2")); !errors.Is(err, insertErr) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if m.Written() != 1 {
		t.Fatalf("failed batch must not count as written, got %d", m.Written())
	}
}
