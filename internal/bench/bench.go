// Package bench defines each logical query twice — once as relational
// joins over the normalized tables, once as a filter/unwind/group over the
// aggregate collection — and measures both forms with equivalent
// parameters so their timings are comparable.
package bench

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Model names for the two query forms.
const (
	ModelNormalized   = "normalized"
	ModelDenormalized = "denormalized"
)

// ErrorMarker replaces the timing of a form that failed every execution.
const ErrorMarker = "ERROR"

// Params carries the shared inputs of the benchmark matrix. Both forms of
// a pair always receive the same values.
type Params struct {
	Actor         string
	Genre         string
	StartYear     int
	EndYear       int
	TopN          int
	GenreFloor    int    // minimum rated movies for the popular-genres query
	RankVoteFloor int    // vote floor for the per-genre ranking query
	BreakoutVotes int    // vote threshold for breakout detection
	TitleID       string // target of the point-lookup pair
}

// DefaultParams mirrors the reference benchmark inputs.
func DefaultParams() Params {
	return Params{
		Actor:         "Tom Hanks",
		Genre:         "Drama",
		StartYear:     1990,
		EndYear:       2000,
		TopN:          10,
		GenreFloor:    50,
		RankVoteFloor: 1000,
		BreakoutVotes: 200000,
		TitleID:       "tt0111161",
	}
}

// Result is one execution's outcome. Keys holds one canonical string per
// result row so the two forms of a pair can be compared as sets.
type Result struct {
	Count int
	Keys  []string
}

// FormFunc is one executable form of a logical query.
type FormFunc func(ctx context.Context, p Params) (Result, error)

// Pair binds the two forms of one logical query.
type Pair struct {
	Name         string
	Normalized   FormFunc
	Denormalized FormFunc
}

// Record is one row of the benchmark report.
type Record struct {
	Query string
	Model string
	AvgMs float64
	Count int
	Err   string
}

// Harness executes the benchmark matrix. It is read-only against both
// stores; callers must not run it concurrently with a rebuild.
type Harness struct {
	runs   int
	logger *zap.Logger
}

// NewHarness creates a harness running each form the given number of timed
// repetitions after one untimed warm-up.
func NewHarness(runs int, logger *zap.Logger) *Harness {
	if runs < 1 {
		runs = 1
	}
	return &Harness{runs: runs, logger: logger}
}

// Run executes every pair in both forms and returns one record per form.
// A form that fails is reported with an error marker; the rest of the
// matrix still runs.
func (h *Harness) Run(ctx context.Context, pairs []Pair, p Params) []Record {
	records := make([]Record, 0, len(pairs)*2)
	for _, pair := range pairs {
		records = append(records, h.measure(ctx, pair.Name, ModelNormalized, pair.Normalized, p))
		records = append(records, h.measure(ctx, pair.Name, ModelDenormalized, pair.Denormalized, p))
	}
	return records
}

func (h *Harness) measure(ctx context.Context, query, model string, form FormFunc, p Params) Record {
	record := Record{Query: query, Model: model}

	// Untimed warm-up.
	if _, err := safeExecute(ctx, form, p); err != nil {
		h.logger.Warn("benchmark form failed",
			zap.String("query", query),
			zap.String("model", model),
			zap.Error(err))
		record.Err = ErrorMarker
		return record
	}

	var total time.Duration
	var last Result
	for i := 0; i < h.runs; i++ {
		start := time.Now()
		result, err := safeExecute(ctx, form, p)
		if err != nil {
			h.logger.Warn("benchmark form failed",
				zap.String("query", query),
				zap.String("model", model),
				zap.Error(err))
			record.Err = ErrorMarker
			return record
		}
		total += time.Since(start)
		last = result
	}

	record.AvgMs = float64(total.Microseconds()) / 1000.0 / float64(h.runs)
	record.Count = last.Count
	return record
}

// safeExecute shields the matrix from a panicking form.
func safeExecute(ctx context.Context, form FormFunc, p Params) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("query form panicked: %v", r)
		}
	}()
	return form(ctx, p)
}

// Equivalence is the outcome of comparing the two forms' result sets.
type Equivalence struct {
	Query            string
	Equivalent       bool
	OnlyNormalized   []string
	OnlyDenormalized []string
}

// VerifyEquivalence executes both forms once and compares their canonical
// key sets. Byte order is irrelevant; only set membership counts.
func VerifyEquivalence(ctx context.Context, pair Pair, p Params) (Equivalence, error) {
	eq := Equivalence{Query: pair.Name}

	normalized, err := pair.Normalized(ctx, p)
	if err != nil {
		return eq, err
	}
	denormalized, err := pair.Denormalized(ctx, p)
	if err != nil {
		return eq, err
	}

	normalizedSet := make(map[string]bool, len(normalized.Keys))
	for _, k := range normalized.Keys {
		normalizedSet[k] = true
	}
	denormalizedSet := make(map[string]bool, len(denormalized.Keys))
	for _, k := range denormalized.Keys {
		denormalizedSet[k] = true
	}

	for k := range normalizedSet {
		if !denormalizedSet[k] {
			eq.OnlyNormalized = append(eq.OnlyNormalized, k)
		}
	}
	for k := range denormalizedSet {
		if !normalizedSet[k] {
			eq.OnlyDenormalized = append(eq.OnlyDenormalized, k)
		}
	}
	sort.Strings(eq.OnlyNormalized)
	sort.Strings(eq.OnlyDenormalized)
	eq.Equivalent = len(eq.OnlyNormalized) == 0 && len(eq.OnlyDenormalized) == 0

	return eq, nil
}
