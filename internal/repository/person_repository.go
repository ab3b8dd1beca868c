package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cineexplorer/cinedoc/internal/domain"
	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
)

type personRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository creates a repository over the Person table
func NewPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &personRepository{pool: pool}
}

// GetByIDs retrieves multiple person records by their ids. Missing ids are
// simply absent from the result; the caller decides the fallback.
func (r *personRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Person, error) {
	const op = "repository.PersonRepository.GetByIDs"
	if len(ids) == 0 {
		return []domain.Person{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT person_id, primaryName, birthYear, deathYear
		FROM Person
		WHERE person_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to fetch persons", err)
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		var p domain.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.BirthYear, &p.DeathYear); err != nil {
			return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to scan person row", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to read person rows", err)
	}

	return persons, nil
}
