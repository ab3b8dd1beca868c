// Package reader streams primary-entity rows from the relational store in
// fixed-size, primary-key-ordered batches.
package reader

import (
	"context"

	"github.com/cineexplorer/cinedoc/internal/domain"
	"github.com/cineexplorer/cinedoc/internal/repository"
)

// TitleReader iterates the Movie table with keyset pagination. It is
// restartable from the beginning only; no cursor state is persisted.
type TitleReader struct {
	repo      repository.TitleRepository
	batchSize int
	afterID   string
	done      bool
}

// NewTitleReader creates a reader producing batches of at most batchSize
// titles in movie_id order.
func NewTitleReader(repo repository.TitleRepository, batchSize int) *TitleReader {
	return &TitleReader{repo: repo, batchSize: batchSize}
}

// Next returns the next batch, or a nil slice once the table is exhausted.
func (r *TitleReader) Next(ctx context.Context) ([]domain.Title, error) {
	if r.done {
		return nil, nil
	}

	titles, err := r.repo.ListBatch(ctx, r.afterID, r.batchSize)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		r.done = true
		return nil, nil
	}

	r.afterID = titles[len(titles)-1].ID
	if len(titles) < r.batchSize {
		r.done = true
	}

	return titles, nil
}

// Reset rewinds the reader to the start of the table.
func (r *TitleReader) Reset() {
	r.afterID = ""
	r.done = false
}
