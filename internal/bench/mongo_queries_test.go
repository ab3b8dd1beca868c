package bench

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestTopByGenreFilterExcludesUnratedDocuments(t *testing.T) {
	filter := topByGenreFilter(DefaultParams())

	var guarded bool
	for _, e := range filter {
		if e.Key != "rating" {
			continue
		}
		cond, ok := e.Value.(bson.D)
		if !ok {
			t.Fatalf("rating condition has unexpected shape: %+v", e.Value)
		}
		for _, c := range cond {
			if c.Key == "$ne" && c.Value == nil {
				guarded = true
			}
		}
	}
	if !guarded {
		t.Fatal("filter must exclude rating: null documents")
	}
}

func TestTopByGenreFilterBoundsYearRange(t *testing.T) {
	p := DefaultParams()
	filter := topByGenreFilter(p)

	var lo, hi int
	for _, e := range filter {
		if e.Key != "year" {
			continue
		}
		for _, c := range e.Value.(bson.D) {
			switch c.Key {
			case "$gte":
				lo = c.Value.(int)
			case "$lte":
				hi = c.Value.(int)
			}
		}
	}
	if lo != p.StartYear || hi != p.EndYear {
		t.Fatalf("expected year bounds [%d, %d], got [%d, %d]", p.StartYear, p.EndYear, lo, hi)
	}
}
