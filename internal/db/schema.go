package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
)

// expectedColumns is the static source-schema contract the pipeline reads.
// Identifiers are compared case-folded because unquoted Postgres
// identifiers fold to lowercase. Validation runs before any read so a
// renamed or dropped column fails the run up front instead of silently
// producing empty fields.
var expectedColumns = map[string][]string{
	"movie":          {"movie_id", "titletype", "primarytitle", "originaltitle", "isadult", "startyear", "endyear", "runtimeminutes"},
	"person":         {"person_id", "primaryname", "birthyear", "deathyear"},
	"rating":         {"movie_id", "averagerating", "numvotes"},
	"moviegenre":     {"movie_id", "genre_name"},
	"movieprincipal": {"movie_id", "person_id", "ordering", "category", "job"},
}

// ValidateSchema checks the relational source against the expected static
// column mapping and fails with SchemaMismatch naming the first absence.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const op = "db.ValidateSchema"

	tables := make([]string, 0, len(expectedColumns))
	for table := range expectedColumns {
		tables = append(tables, table)
	}

	rows, err := pool.Query(ctx, `
		SELECT lower(table_name), lower(column_name)
		FROM information_schema.columns
		WHERE table_schema = 'public' AND lower(table_name) = ANY($1)
	`, tables)
	if err != nil {
		return cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to read source schema", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to scan schema row", err)
		}
		present[table+"."+column] = true
	}
	if err := rows.Err(); err != nil {
		return cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to read source schema", err)
	}

	for table, columns := range expectedColumns {
		for _, column := range columns {
			key := table + "." + strings.ToLower(column)
			if !present[key] {
				return cerrors.New(cerrors.KindSchemaMismatch, op,
					fmt.Sprintf("expected column %s is absent from the relational source", key))
			}
		}
	}

	return nil
}
