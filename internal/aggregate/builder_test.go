package aggregate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/cineexplorer/cinedoc/internal/domain"
	"github.com/cineexplorer/cinedoc/internal/join"
	"github.com/cineexplorer/cinedoc/internal/personloader"
)

type mapLookup struct {
	persons map[string]domain.Person
	err     error
}

func (m *mapLookup) Load(ctx context.Context, id string) personloader.Thunk {
	return func() (domain.Person, bool, error) {
		if m.err != nil {
			return domain.Person{}, false, m.err
		}
		p, ok := m.persons[id]
		return p, ok, nil
	}
}

func strPtr(s string) *string { return &s }

func batchOf(titles ...join.JoinedTitle) *join.JoinedBatch {
	return &join.JoinedBatch{Titles: titles}
}

func TestBuildShapesDocument(t *testing.T) {
	lookup := &mapLookup{persons: map[string]domain.Person{
		"nm1": {ID: "nm1", Name: "Frank Darabont"},
	}}
	b := NewBuilder(lookup, zap.NewNop())

	batch := batchOf(join.JoinedTitle{
		Title: domain.Title{
			ID:             "tt0111161",
			PrimaryTitle:   "The Shawshank Redemption",
			StartYear:      strPtr("1994"),
			RuntimeMinutes: strPtr("142"),
		},
		Rating: &domain.Rating{TitleID: "tt0111161", Average: 9.3, Votes: 2500000},
		Genres: []string{"Drama"},
		Credits: []domain.CreditRow{
			{TitleID: "tt0111161", PersonID: "nm1", Ordering: 1, Category: "director"},
		},
	})

	docs, anomalies, err := b.Build(context.Background(), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anomalies != 0 {
		t.Fatalf("expected no anomalies, got %d", anomalies)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	doc := docs[0]
	if doc.ID != "tt0111161" || doc.Title != "The Shawshank Redemption" {
		t.Fatalf("unexpected identity fields: %+v", doc)
	}
	if doc.Year == nil || *doc.Year != 1994 {
		t.Fatalf("expected year 1994, got %v", doc.Year)
	}
	if doc.Runtime == nil || *doc.Runtime != 142 {
		t.Fatalf("expected runtime 142, got %v", doc.Runtime)
	}
	if doc.Rating == nil || doc.Rating.Average != 9.3 || doc.Rating.Votes != 2500000 {
		t.Fatalf("unexpected rating: %+v", doc.Rating)
	}
	if len(doc.Cast) != 1 || doc.Cast[0].Name != "Frank Darabont" || doc.Cast[0].Category != "director" {
		t.Fatalf("unexpected cast: %+v", doc.Cast)
	}
}

func TestBuildNormalizesSentinels(t *testing.T) {
	b := NewBuilder(&mapLookup{}, zap.NewNop())

	batch := batchOf(
		join.JoinedTitle{Title: domain.Title{ID: "tt1", StartYear: strPtr(`\N`), RuntimeMinutes: strPtr("")}},
		join.JoinedTitle{Title: domain.Title{ID: "tt2", StartYear: nil, RuntimeMinutes: strPtr("ninety")}},
	)

	docs, _, err := b.Build(context.Background(), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, doc := range docs {
		if doc.Year != nil {
			t.Fatalf("%s: expected nil year, got %d", doc.ID, *doc.Year)
		}
		if doc.Runtime != nil {
			t.Fatalf("%s: expected nil runtime, got %d", doc.ID, *doc.Runtime)
		}
	}
}

func TestBuildMissingRatingStaysNull(t *testing.T) {
	b := NewBuilder(&mapLookup{}, zap.NewNop())

	docs, _, err := b.Build(context.Background(), batchOf(join.JoinedTitle{
		Title: domain.Title{ID: "tt1"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs[0].Rating != nil {
		t.Fatalf("expected nil rating, got %+v", docs[0].Rating)
	}
	if docs[0].Genres == nil || docs[0].Cast == nil {
		t.Fatal("genres and cast must be empty slices, not nil")
	}
}

func TestBuildKeepsUnresolvedPersons(t *testing.T) {
	lookup := &mapLookup{persons: map[string]domain.Person{
		"nm1": {ID: "nm1", Name: "Known Actor"},
	}}
	b := NewBuilder(lookup, zap.NewNop())

	docs, anomalies, err := b.Build(context.Background(), batchOf(join.JoinedTitle{
		Title: domain.Title{ID: "tt1"},
		Credits: []domain.CreditRow{
			{TitleID: "tt1", PersonID: "nm1", Ordering: 1, Category: "actor"},
			{TitleID: "tt1", PersonID: "nm404", Ordering: 2, Category: "actor"},
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anomalies != 1 {
		t.Fatalf("expected 1 anomaly, got %d", anomalies)
	}
	if len(docs[0].Cast) != 2 {
		t.Fatalf("unresolved person must stay in the cast, got %d entries", len(docs[0].Cast))
	}
	if docs[0].Cast[1].PersonID != "nm404" || docs[0].Cast[1].Name != "" {
		t.Fatalf("unexpected fallback entry: %+v", docs[0].Cast[1])
	}
}

func TestBuildLookupFailureIsFatal(t *testing.T) {
	storeErr := errors.New("source unavailable")
	b := NewBuilder(&mapLookup{err: storeErr}, zap.NewNop())

	_, _, err := b.Build(context.Background(), batchOf(join.JoinedTitle{
		Title:   domain.Title{ID: "tt1"},
		Credits: []domain.CreditRow{{TitleID: "tt1", PersonID: "nm1", Ordering: 1}},
	}))
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected lookup error to propagate, got %v", err)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	lookup := &mapLookup{persons: map[string]domain.Person{
		"nm1": {ID: "nm1", Name: "Actor One"},
		"nm2": {ID: "nm2", Name: "Actor Two"},
	}}
	b := NewBuilder(lookup, zap.NewNop())

	batch := batchOf(join.JoinedTitle{
		Title:  domain.Title{ID: "tt1", PrimaryTitle: "Rerun", StartYear: strPtr("2001")},
		Rating: &domain.Rating{TitleID: "tt1", Average: 6.5, Votes: 42},
		Genres: []string{"Comedy", "Drama"},
		Credits: []domain.CreditRow{
			{TitleID: "tt1", PersonID: "nm1", Ordering: 1, Category: "actor"},
			{TitleID: "tt1", PersonID: "nm2", Ordering: 2, Category: "actress"},
		},
	})

	first, _, err := b.Build(context.Background(), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := b.Build(context.Background(), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two builds of the same batch differ:\n%+v\n%+v", first, second)
	}
}

func TestParseNullableInt(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want *int
	}{
		{"nil", nil, nil},
		{"empty", strPtr(""), nil},
		{"sentinel", strPtr(`\N`), nil},
		{"padded", strPtr(" 1999 "), intPtr(1999)},
		{"garbage", strPtr("n/a"), nil},
		{"negative", strPtr("-1"), nil},
		{"zero", strPtr("0"), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseNullableInt(tc.in)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("got %d, want %d", *got, *tc.want)
			}
		})
	}
}

func intPtr(n int) *int { return &n }
