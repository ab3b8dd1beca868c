// Package join resolves the rows related to a batch of titles and groups
// them per title id, applying the cardinality rules before anything flows
// downstream: one rating at most, deduplicated genres, billing-ordered
// credits capped at the configured maximum.
package join

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/cineexplorer/cinedoc/internal/domain"
	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
	"github.com/cineexplorer/cinedoc/internal/repository"
)

// JoinedTitle carries one title together with its grouped related rows.
// Genres are deduplicated and sorted; Credits are sorted by billing order
// and already truncated to the cast cap.
type JoinedTitle struct {
	Title   domain.Title
	Rating  *domain.Rating
	Genres  []string
	Credits []domain.CreditRow
}

// JoinedBatch is the resolver output for one reader batch. Titles keep the
// reader's order. Anomalies counts recoverable data defects that were
// absorbed (currently: duplicate rating rows).
type JoinedBatch struct {
	Titles    []JoinedTitle
	Anomalies int
}

// Resolver fetches related rows in bulk, one query per relation keyed by
// the batch's title-id set.
type Resolver struct {
	related repository.RelatedRepository
	castCap int
	logger  *zap.Logger
}

// NewResolver creates a resolver with the given cast cap.
func NewResolver(related repository.RelatedRepository, castCap int, logger *zap.Logger) *Resolver {
	return &Resolver{related: related, castCap: castCap, logger: logger}
}

// Resolve groups ratings, genre tags and credit rows per title id for the
// given batch.
func (r *Resolver) Resolve(ctx context.Context, titles []domain.Title) (*JoinedBatch, error) {
	ids := make([]string, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
	}

	ratings, err := r.related.RatingsByTitleIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	tags, err := r.related.GenresByTitleIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	credits, err := r.related.CreditsByTitleIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	anomalies := 0

	ratingByID := make(map[string]*domain.Rating, len(ratings))
	for i := range ratings {
		rating := ratings[i]
		if _, exists := ratingByID[rating.TitleID]; exists {
			// First encountered wins; the duplicate is a data defect, not
			// a reason to fail the run.
			anomalies++
			r.logger.Warn("duplicate rating row",
				zap.String("kind", string(cerrors.KindRecoverableAnomaly)),
				zap.String("movie_id", rating.TitleID))
			continue
		}
		ratingByID[rating.TitleID] = &rating
	}

	genreSets := make(map[string]map[string]struct{})
	for _, tag := range tags {
		set, ok := genreSets[tag.TitleID]
		if !ok {
			set = make(map[string]struct{})
			genreSets[tag.TitleID] = set
		}
		set[tag.Genre] = struct{}{}
	}

	creditsByID := make(map[string][]domain.CreditRow)
	for _, credit := range credits {
		creditsByID[credit.TitleID] = append(creditsByID[credit.TitleID], credit)
	}

	joined := make([]JoinedTitle, len(titles))
	for i, t := range titles {
		genres := make([]string, 0, len(genreSets[t.ID]))
		for genre := range genreSets[t.ID] {
			genres = append(genres, genre)
		}
		sort.Strings(genres)

		rows := creditsByID[t.ID]
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].Ordering != rows[b].Ordering {
				return rows[a].Ordering < rows[b].Ordering
			}
			return rows[a].PersonID < rows[b].PersonID
		})
		// Capping here bounds memory and keeps the person-lookup fan-out
		// proportional to the cap rather than to total cast size.
		if len(rows) > r.castCap {
			rows = rows[:r.castCap]
		}

		joined[i] = JoinedTitle{
			Title:   t,
			Rating:  ratingByID[t.ID],
			Genres:  genres,
			Credits: rows,
		}
	}

	return &JoinedBatch{Titles: joined, Anomalies: anomalies}, nil
}
