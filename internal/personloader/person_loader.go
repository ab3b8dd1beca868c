// Package personloader batches person lookups behind a dataloader so the
// aggregate builder can resolve cast names per credit row while the store
// sees one bulk query per batch window.
package personloader

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/cineexplorer/cinedoc/internal/domain"
	"github.com/cineexplorer/cinedoc/internal/repository"
)

// Thunk resolves a single person lookup. found is false when the person id
// has no row in the source; err is reserved for store failures.
type Thunk func() (domain.Person, bool, error)

// PersonLoader wraps a dataloader over PersonRepository.GetByIDs.
type PersonLoader struct {
	loader *dataloader.Loader
}

// NewPersonLoader creates a loader that coalesces individual person loads
// into bulk GetByIDs calls.
func NewPersonLoader(repo repository.PersonRepository) *PersonLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]string, len(keys))
		for i, k := range keys {
			ids[i] = k.String()
		}

		persons, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		personMap := make(map[string]domain.Person, len(persons))
		for _, p := range persons {
			personMap[p.ID] = p
		}

		// Build results in the same order as keys; absent ids stay nil so
		// the caller can apply its unresolved-person fallback.
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if p, ok := personMap[id]; ok {
				results[i] = &dataloader.Result{Data: p}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(2*time.Millisecond))

	return &PersonLoader{loader: loader}
}

// Load schedules a person lookup and returns a thunk that blocks until the
// surrounding batch window has fired.
func (l *PersonLoader) Load(ctx context.Context, id string) Thunk {
	thunk := l.loader.Load(ctx, dataloader.StringKey(id))
	return func() (domain.Person, bool, error) {
		data, err := thunk()
		if err != nil {
			return domain.Person{}, false, err
		}
		p, ok := data.(domain.Person)
		if !ok {
			return domain.Person{}, false, nil
		}
		return p, true, nil
	}
}
