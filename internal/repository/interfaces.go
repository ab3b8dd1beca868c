package repository

import (
	"context"

	"github.com/cineexplorer/cinedoc/internal/domain"
)

// TitleRepository defines the read interface for the primary entity table
type TitleRepository interface {
	// ListBatch returns up to limit titles with movie_id strictly greater
	// than afterID, in primary-key order. An empty afterID starts from the
	// beginning; an empty result means the table is exhausted.
	ListBatch(ctx context.Context, afterID string, limit int) ([]domain.Title, error)
	Count(ctx context.Context) (int64, error)
}

// RelatedRepository defines bulk reads of rows related to a batch of titles.
// Each method issues one query keyed by the batch's id set so join cost
// stays linear in batch size. Row order within a title id is fully
// deterministic so downstream first-wins rules are stable across rebuilds.
type RelatedRepository interface {
	// RatingsByTitleIDs returns rating rows ordered by
	// (movie_id, averageRating, numVotes).
	RatingsByTitleIDs(ctx context.Context, ids []string) ([]domain.Rating, error)
	GenresByTitleIDs(ctx context.Context, ids []string) ([]domain.GenreTag, error)
	CreditsByTitleIDs(ctx context.Context, ids []string) ([]domain.CreditRow, error)
}

// PersonRepository defines the read interface for person records
type PersonRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Person, error)
}
