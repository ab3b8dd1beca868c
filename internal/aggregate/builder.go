// Package aggregate folds joined row sets into one self-contained document
// per title.
package aggregate

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cineexplorer/cinedoc/internal/domain"
	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
	"github.com/cineexplorer/cinedoc/internal/join"
	"github.com/cineexplorer/cinedoc/internal/personloader"
)

// unknownSentinel is the dataset's marker for an unknown value, preserved
// verbatim by the upstream import.
const unknownSentinel = `\N`

// PersonLookup schedules person resolutions. Satisfied by
// personloader.PersonLoader; tests substitute an in-memory lookup.
type PersonLookup interface {
	Load(ctx context.Context, id string) personloader.Thunk
}

// Builder shapes aggregate documents out of joined batches.
type Builder struct {
	persons PersonLookup
	logger  *zap.Logger
}

// NewBuilder creates a builder resolving cast names through the given
// lookup.
func NewBuilder(persons PersonLookup, logger *zap.Logger) *Builder {
	return &Builder{persons: persons, logger: logger}
}

// Build produces one document per joined title, in batch order. It returns
// the number of recoverable anomalies absorbed (unresolved person
// references). Store failures during person resolution are fatal and
// propagate.
func (b *Builder) Build(ctx context.Context, batch *join.JoinedBatch) ([]domain.AggregateDocument, int, error) {
	// Schedule every lookup before resolving the first thunk so the
	// dataloader can coalesce the whole batch into one bulk query.
	thunks := make([][]personloader.Thunk, len(batch.Titles))
	for i, jt := range batch.Titles {
		thunks[i] = make([]personloader.Thunk, len(jt.Credits))
		for j, credit := range jt.Credits {
			thunks[i][j] = b.persons.Load(ctx, credit.PersonID)
		}
	}

	anomalies := 0
	docs := make([]domain.AggregateDocument, len(batch.Titles))
	for i, jt := range batch.Titles {
		doc := domain.AggregateDocument{
			ID:      jt.Title.ID,
			Title:   jt.Title.PrimaryTitle,
			Year:    parseNullableInt(jt.Title.StartYear),
			Runtime: parseNullableInt(jt.Title.RuntimeMinutes),
			Genres:  make([]string, 0, len(jt.Genres)),
			Cast:    make([]domain.CastEntry, 0, len(jt.Credits)),
		}
		doc.Genres = append(doc.Genres, jt.Genres...)

		if jt.Rating != nil {
			doc.Rating = &domain.RatingInfo{
				Average: jt.Rating.Average,
				Votes:   jt.Rating.Votes,
			}
		}

		for j, credit := range jt.Credits {
			person, found, err := thunks[i][j]()
			if err != nil {
				return nil, anomalies, err
			}
			entry := domain.CastEntry{
				PersonID: credit.PersonID,
				Category: credit.Category,
			}
			if found {
				entry.Name = person.Name
			} else {
				// Keep the entry with the name unresolved so cast counts
				// stay consistent with the source credit rows.
				anomalies++
				b.logger.Warn("unresolved person reference",
					zap.String("kind", string(cerrors.KindRecoverableAnomaly)),
					zap.String("movie_id", jt.Title.ID),
					zap.String("person_id", credit.PersonID))
			}
			doc.Cast = append(doc.Cast, entry)
		}

		docs[i] = doc
	}

	return docs, anomalies, nil
}

// parseNullableInt maps raw source text to a nullable integer: NULL, empty
// and sentinel values become nil, and an unparseable or non-positive value
// nulls only this field. Years and runtimes are strictly positive in the
// source domain.
func parseNullableInt(raw *string) *int {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" || s == unknownSentinel {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
