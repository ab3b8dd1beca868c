package bench

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// yearExpr normalizes the raw startYear text to a nullable integer inside
// SQL, mirroring the sentinel policy of the aggregate builder so both
// models see the same year values.
const yearExpr = `NULLIF(NULLIF(m.startYear, '\N'), '')::int`

// SQLQueries holds the normalized forms, expressed as joins and
// aggregations over the relational tables.
type SQLQueries struct {
	pool *pgxpool.Pool
}

// NewSQLQueries creates the normalized query set.
func NewSQLQueries(pool *pgxpool.Pool) *SQLQueries {
	return &SQLQueries{pool: pool}
}

// Filmography returns (title, year) pairs for an actor's acting credits.
func (q *SQLQueries) Filmography(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT m.primaryTitle, `+yearExpr+` AS year
		FROM Person pe
		JOIN MoviePrincipal mp ON pe.person_id = mp.person_id
		JOIN Movie m ON mp.movie_id = m.movie_id
		WHERE pe.primaryName = $1 AND mp.category IN ('actor', 'actress')
		ORDER BY year DESC NULLS LAST, m.primaryTitle
	`, p.Actor)
	if err != nil {
		return Result{}, fmt.Errorf("filmography query: %w", err)
	}
	return collectKeys(rows, func(rows pgx.Rows) (string, error) {
		var title string
		var year *int
		if err := rows.Scan(&title, &year); err != nil {
			return "", err
		}
		return title + "|" + keyInt(year), nil
	})
}

// TopByGenre returns the best-rated titles of a genre within a year range.
func (q *SQLQueries) TopByGenre(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT m.primaryTitle
		FROM Movie m
		JOIN MovieGenre mg ON m.movie_id = mg.movie_id
		JOIN Rating r ON m.movie_id = r.movie_id
		WHERE mg.genre_name = $1
		  AND `+yearExpr+` BETWEEN $2 AND $3
		ORDER BY r.averageRating DESC, r.numVotes DESC, m.movie_id
		LIMIT $4
	`, p.Genre, p.StartYear, p.EndYear, p.TopN)
	if err != nil {
		return Result{}, fmt.Errorf("top-by-genre query: %w", err)
	}
	return collectKeys(rows, scanOneString)
}

// MultiRole returns (movie, person) pairs credited with more than one
// distinct acting role in the same title.
func (q *SQLQueries) MultiRole(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT mp.movie_id, mp.person_id
		FROM MoviePrincipal mp
		WHERE mp.category IN ('actor', 'actress')
		  AND mp.job IS NOT NULL AND mp.job <> ''
		GROUP BY mp.movie_id, mp.person_id
		HAVING COUNT(*) > 1
		ORDER BY COUNT(*) DESC, mp.movie_id, mp.person_id
		LIMIT 10
	`)
	if err != nil {
		return Result{}, fmt.Errorf("multi-role query: %w", err)
	}
	return collectKeys(rows, func(rows pgx.Rows) (string, error) {
		var movieID, personID string
		if err := rows.Scan(&movieID, &personID); err != nil {
			return "", err
		}
		return movieID + "|" + personID, nil
	})
}

// Collaborations returns directors who worked with the given actor,
// ordered by the number of shared titles.
func (q *SQLQueries) Collaborations(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT d.primaryName
		FROM Movie m
		JOIN MoviePrincipal mp_d ON m.movie_id = mp_d.movie_id AND mp_d.category = 'director'
		JOIN Person d ON mp_d.person_id = d.person_id
		WHERE m.movie_id IN (
			SELECT mp_a.movie_id
			FROM MoviePrincipal mp_a
			JOIN Person pa ON mp_a.person_id = pa.person_id
			WHERE pa.primaryName = $1 AND mp_a.category IN ('actor', 'actress')
		)
		GROUP BY d.primaryName
		ORDER BY COUNT(m.movie_id) DESC, d.primaryName
	`, p.Actor)
	if err != nil {
		return Result{}, fmt.Errorf("collaborations query: %w", err)
	}
	return collectKeys(rows, scanOneString)
}

// PopularGenres returns genres whose rated titles average above 7.0 with
// more than GenreFloor titles.
func (q *SQLQueries) PopularGenres(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT mg.genre_name
		FROM Movie m
		JOIN MovieGenre mg ON m.movie_id = mg.movie_id
		JOIN Rating r ON m.movie_id = r.movie_id
		GROUP BY mg.genre_name
		HAVING AVG(r.averageRating) > 7.0 AND COUNT(m.movie_id) > $1
		ORDER BY AVG(r.averageRating) DESC, COUNT(m.movie_id) DESC
	`, p.GenreFloor)
	if err != nil {
		return Result{}, fmt.Errorf("popular-genres query: %w", err)
	}
	return collectKeys(rows, scanOneString)
}

// CareerByDecade returns the actor's title count per decade.
func (q *SQLQueries) CareerByDecade(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		WITH actor_films AS (
			SELECT m.movie_id, `+yearExpr+` AS year
			FROM Person pe
			JOIN MoviePrincipal mp ON pe.person_id = mp.person_id
			JOIN Movie m ON mp.movie_id = m.movie_id
			WHERE pe.primaryName = $1 AND mp.category IN ('actor', 'actress')
		)
		SELECT (year / 10) * 10 AS decade, COUNT(movie_id) AS films
		FROM actor_films
		WHERE year IS NOT NULL
		GROUP BY decade
		ORDER BY decade
	`, p.Actor)
	if err != nil {
		return Result{}, fmt.Errorf("career-by-decade query: %w", err)
	}
	return collectKeys(rows, func(rows pgx.Rows) (string, error) {
		var decade int
		var films int64
		if err := rows.Scan(&decade, &films); err != nil {
			return "", err
		}
		return strconv.Itoa(decade) + "|" + strconv.FormatInt(films, 10), nil
	})
}

// GenreRanking returns the top three titles per genre among titles above
// the rank vote floor.
func (q *SQLQueries) GenreRanking(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT genre_name, primaryTitle
		FROM (
			SELECT mg.genre_name, m.primaryTitle,
			       ROW_NUMBER() OVER (
			           PARTITION BY mg.genre_name
			           ORDER BY r.averageRating DESC, r.numVotes DESC, m.movie_id
			       ) AS rn
			FROM Movie m
			JOIN MovieGenre mg ON m.movie_id = mg.movie_id
			JOIN Rating r ON m.movie_id = r.movie_id
			WHERE r.numVotes > $1
		) ranked
		WHERE rn <= 3
		ORDER BY genre_name, rn
	`, p.RankVoteFloor)
	if err != nil {
		return Result{}, fmt.Errorf("genre-ranking query: %w", err)
	}
	return collectKeys(rows, func(rows pgx.Rows) (string, error) {
		var genre, title string
		if err := rows.Scan(&genre, &title); err != nil {
			return "", err
		}
		return genre + "|" + title, nil
	})
}

// Breakout returns persons credited both below and above the vote
// threshold, the original's proxy for a breakout career.
func (q *SQLQueries) Breakout(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT DISTINCT pe.primaryName
		FROM Person pe
		JOIN MoviePrincipal mp_low ON pe.person_id = mp_low.person_id
		JOIN Rating r_low ON mp_low.movie_id = r_low.movie_id
		JOIN MoviePrincipal mp_high ON pe.person_id = mp_high.person_id
		JOIN Rating r_high ON mp_high.movie_id = r_high.movie_id
		WHERE r_low.numVotes < $1
		  AND r_high.numVotes > $1
		  AND mp_low.category IN ('actor', 'actress', 'director')
		  AND mp_high.category IN ('actor', 'actress', 'director')
		ORDER BY pe.primaryName
		LIMIT 10
	`, p.BreakoutVotes)
	if err != nil {
		return Result{}, fmt.Errorf("breakout query: %w", err)
	}
	return collectKeys(rows, scanOneString)
}

// ProlificActors returns actors with at least ten rated titles averaging
// above 7.0 who never directed.
func (q *SQLQueries) ProlificActors(ctx context.Context, p Params) (Result, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT pe.primaryName
		FROM Person pe
		JOIN MoviePrincipal mp ON pe.person_id = mp.person_id AND mp.category IN ('actor', 'actress')
		JOIN Movie m ON mp.movie_id = m.movie_id
		JOIN Rating r ON m.movie_id = r.movie_id
		WHERE pe.person_id NOT IN (
			SELECT person_id FROM MoviePrincipal WHERE category = 'director'
		)
		GROUP BY pe.person_id, pe.primaryName
		HAVING COUNT(m.movie_id) >= 10 AND AVG(r.averageRating) > 7.0
		ORDER BY AVG(r.averageRating) DESC, COUNT(m.movie_id) DESC, pe.primaryName
		LIMIT 10
	`)
	if err != nil {
		return Result{}, fmt.Errorf("prolific-actors query: %w", err)
	}
	return collectKeys(rows, scanOneString)
}

// PointLookup assembles one title from the four relational tables, the
// per-title read the aggregate document replaces with a single fetch.
func (q *SQLQueries) PointLookup(ctx context.Context, p Params) (Result, error) {
	var title string
	err := q.pool.QueryRow(ctx,
		`SELECT primaryTitle FROM Movie WHERE movie_id = $1`, p.TitleID).Scan(&title)
	if err != nil {
		return Result{}, fmt.Errorf("point-lookup movie query: %w", err)
	}

	var average *float64
	var votes *int
	err = q.pool.QueryRow(ctx,
		`SELECT averageRating, numVotes FROM Rating WHERE movie_id = $1`, p.TitleID).
		Scan(&average, &votes)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Result{}, fmt.Errorf("point-lookup rating query: %w", err)
	}

	genreRows, err := q.pool.Query(ctx,
		`SELECT genre_name FROM MovieGenre WHERE movie_id = $1`, p.TitleID)
	if err != nil {
		return Result{}, fmt.Errorf("point-lookup genre query: %w", err)
	}
	if _, err := collectKeys(genreRows, scanOneString); err != nil {
		return Result{}, fmt.Errorf("point-lookup genre query: %w", err)
	}

	creditRows, err := q.pool.Query(ctx,
		`SELECT person_id FROM MoviePrincipal WHERE movie_id = $1 ORDER BY ordering`, p.TitleID)
	if err != nil {
		return Result{}, fmt.Errorf("point-lookup credit query: %w", err)
	}
	if _, err := collectKeys(creditRows, scanOneString); err != nil {
		return Result{}, fmt.Errorf("point-lookup credit query: %w", err)
	}

	return Result{Count: 1, Keys: []string{p.TitleID}}, nil
}

// collectKeys drains the rows, building the canonical key per row.
func collectKeys(rows pgx.Rows, scan func(pgx.Rows) (string, error)) (Result, error) {
	defer rows.Close()

	var result Result
	for rows.Next() {
		key, err := scan(rows)
		if err != nil {
			return Result{}, err
		}
		result.Keys = append(result.Keys, key)
		result.Count++
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	return result, nil
}

func scanOneString(rows pgx.Rows) (string, error) {
	var s string
	err := rows.Scan(&s)
	return s, err
}

func keyInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
