package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cineexplorer/cinedoc/internal/domain"
	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
)

type relatedRepository struct {
	pool *pgxpool.Pool
}

// NewRelatedRepository creates a repository for the rating, genre and
// credit tables joined against a batch of title ids
func NewRelatedRepository(pool *pgxpool.Pool) RelatedRepository {
	return &relatedRepository{pool: pool}
}

func (r *relatedRepository) RatingsByTitleIDs(ctx context.Context, ids []string) ([]domain.Rating, error) {
	const op = "repository.RelatedRepository.RatingsByTitleIDs"
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT movie_id, averageRating, numVotes
		FROM Rating
		WHERE movie_id = ANY($1)
		ORDER BY movie_id, averageRating, numVotes
	`, ids)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to fetch ratings", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rating domain.Rating
		if err := rows.Scan(&rating.TitleID, &rating.Average, &rating.Votes); err != nil {
			return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to scan rating row", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to read rating rows", err)
	}

	return ratings, nil
}

func (r *relatedRepository) GenresByTitleIDs(ctx context.Context, ids []string) ([]domain.GenreTag, error) {
	const op = "repository.RelatedRepository.GenresByTitleIDs"
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT movie_id, genre_name
		FROM MovieGenre
		WHERE movie_id = ANY($1)
		ORDER BY movie_id, genre_name
	`, ids)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to fetch genre tags", err)
	}
	defer rows.Close()

	var tags []domain.GenreTag
	for rows.Next() {
		var tag domain.GenreTag
		if err := rows.Scan(&tag.TitleID, &tag.Genre); err != nil {
			return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to scan genre row", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to read genre rows", err)
	}

	return tags, nil
}

func (r *relatedRepository) CreditsByTitleIDs(ctx context.Context, ids []string) ([]domain.CreditRow, error) {
	const op = "repository.RelatedRepository.CreditsByTitleIDs"
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT movie_id, person_id, ordering, category, job
		FROM MoviePrincipal
		WHERE movie_id = ANY($1)
		ORDER BY movie_id, ordering, person_id
	`, ids)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to fetch credit rows", err)
	}
	defer rows.Close()

	var credits []domain.CreditRow
	for rows.Next() {
		var credit domain.CreditRow
		var category, job *string
		if err := rows.Scan(&credit.TitleID, &credit.PersonID, &credit.Ordering, &category, &job); err != nil {
			return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to scan credit row", err)
		}
		if category != nil {
			credit.Category = *category
		}
		if job != nil {
			credit.Detail = *job
		}
		credits = append(credits, credit)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to read credit rows", err)
	}

	return credits, nil
}
