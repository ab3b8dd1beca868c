package bench

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func countingForm(count *int, result Result, err error) FormFunc {
	return func(ctx context.Context, p Params) (Result, error) {
		*count++
		return result, err
	}
}

func TestHarnessRunsWarmupPlusRepetitions(t *testing.T) {
	executions := 0
	pair := Pair{
		Name:         "filmography",
		Normalized:   countingForm(&executions, Result{Count: 3}, nil),
		Denormalized: countingForm(&executions, Result{Count: 3}, nil),
	}

	h := NewHarness(5, zap.NewNop())
	records := h.Run(context.Background(), []Pair{pair}, DefaultParams())

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// One warm-up plus five timed runs per form.
	if executions != 12 {
		t.Fatalf("expected 12 executions, got %d", executions)
	}
	for _, r := range records {
		if r.Err != "" {
			t.Fatalf("%s/%s: unexpected error marker", r.Query, r.Model)
		}
		if r.Count != 3 {
			t.Fatalf("%s/%s: expected count 3, got %d", r.Query, r.Model, r.Count)
		}
	}
}

func TestHarnessFailureDoesNotAbortMatrix(t *testing.T) {
	okRuns := 0
	failing := Pair{
		Name:       "breakout",
		Normalized: countingForm(&okRuns, Result{Count: 1}, nil),
		Denormalized: func(ctx context.Context, p Params) (Result, error) {
			return Result{}, errors.New("collection missing")
		},
	}
	healthy := Pair{
		Name:         "point_lookup",
		Normalized:   countingForm(&okRuns, Result{Count: 1}, nil),
		Denormalized: countingForm(&okRuns, Result{Count: 1}, nil),
	}

	h := NewHarness(2, zap.NewNop())
	records := h.Run(context.Background(), []Pair{failing, healthy}, DefaultParams())

	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[1].Err != ErrorMarker {
		t.Fatalf("failing form must carry the error marker, got %q", records[1].Err)
	}
	for _, r := range []Record{records[0], records[2], records[3]} {
		if r.Err != "" {
			t.Fatalf("%s/%s: healthy form must not carry an error marker", r.Query, r.Model)
		}
	}
}

func TestHarnessRecoversFromPanickingForm(t *testing.T) {
	pair := Pair{
		Name: "genre_ranking",
		Normalized: func(ctx context.Context, p Params) (Result, error) {
			panic("nil window partition")
		},
		Denormalized: func(ctx context.Context, p Params) (Result, error) {
			return Result{Count: 1}, nil
		},
	}

	h := NewHarness(1, zap.NewNop())
	records := h.Run(context.Background(), []Pair{pair}, DefaultParams())

	if records[0].Err != ErrorMarker {
		t.Fatalf("panicking form must be reported as an error, got %q", records[0].Err)
	}
	if records[1].Err != "" {
		t.Fatalf("other form must still run, got %q", records[1].Err)
	}
}

func TestVerifyEquivalence(t *testing.T) {
	matched := Pair{
		Name: "filmography",
		Normalized: func(ctx context.Context, p Params) (Result, error) {
			return Result{Count: 2, Keys: []string{"tt1", "tt2"}}, nil
		},
		Denormalized: func(ctx context.Context, p Params) (Result, error) {
			return Result{Count: 2, Keys: []string{"tt2", "tt1"}}, nil
		},
	}

	eq, err := VerifyEquivalence(context.Background(), matched, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eq.Equivalent {
		t.Fatalf("same key sets in different order must be equivalent: %+v", eq)
	}

	mismatched := Pair{
		Name: "filmography",
		Normalized: func(ctx context.Context, p Params) (Result, error) {
			return Result{Count: 2, Keys: []string{"tt1", "tt2"}}, nil
		},
		Denormalized: func(ctx context.Context, p Params) (Result, error) {
			return Result{Count: 2, Keys: []string{"tt1", "tt3"}}, nil
		},
	}

	eq, err = VerifyEquivalence(context.Background(), mismatched, DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eq.Equivalent {
		t.Fatal("diverging key sets must not be equivalent")
	}
	if len(eq.OnlyNormalized) != 1 || eq.OnlyNormalized[0] != "tt2" {
		t.Fatalf("expected tt2 only in normalized, got %v", eq.OnlyNormalized)
	}
	if len(eq.OnlyDenormalized) != 1 || eq.OnlyDenormalized[0] != "tt3" {
		t.Fatalf("expected tt3 only in denormalized, got %v", eq.OnlyDenormalized)
	}
}

func TestWriteReportRendersMarkdown(t *testing.T) {
	records := []Record{
		{Query: "filmography", Model: ModelNormalized, AvgMs: 12.345, Count: 40},
		{Query: "filmography", Model: ModelDenormalized, Err: ErrorMarker},
	}

	var sb strings.Builder
	if err := WriteReport(&sb, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "| Query | Model | Avg time (ms) | Results |") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "| filmography | normalized | 12.35 | 40 |") {
		t.Fatalf("missing timed row:\n%s", out)
	}
	if !strings.Contains(out, "| filmography | denormalized | ERROR | 0 |") {
		t.Fatalf("missing error row:\n%s", out)
	}
}
