package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cineexplorer/cinedoc/internal/domain"
	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
)

type titleRepository struct {
	pool *pgxpool.Pool
}

// NewTitleRepository creates a repository over the Movie table
func NewTitleRepository(pool *pgxpool.Pool) TitleRepository {
	return &titleRepository{pool: pool}
}

func (r *titleRepository) ListBatch(ctx context.Context, afterID string, limit int) ([]domain.Title, error) {
	const op = "repository.TitleRepository.ListBatch"

	rows, err := r.pool.Query(ctx, `
		SELECT movie_id, titleType, primaryTitle, originalTitle, isAdult,
		       startYear, endYear, runtimeMinutes
		FROM Movie
		WHERE movie_id > $1
		ORDER BY movie_id
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to list titles", err)
	}
	defer rows.Close()

	var titles []domain.Title
	for rows.Next() {
		var t domain.Title
		var kind, original *string
		if err := rows.Scan(&t.ID, &kind, &t.PrimaryTitle, &original, &t.IsAdult,
			&t.StartYear, &t.EndYear, &t.RuntimeMinutes); err != nil {
			return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to scan title row", err)
		}
		if kind != nil {
			t.Kind = *kind
		}
		if original != nil {
			t.OriginalTitle = *original
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to read title rows", err)
	}

	return titles, nil
}

func (r *titleRepository) Count(ctx context.Context) (int64, error) {
	const op = "repository.TitleRepository.Count"

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM Movie`).Scan(&count); err != nil {
		return 0, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to count titles", err)
	}
	return count, nil
}
