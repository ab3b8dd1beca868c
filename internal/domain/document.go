package domain

// AggregateDocument is the denormalized document materialized per title.
// The document id equals the source movie id, so a document carries no
// identity of its own and is regenerated wholesale on every pipeline run.
//
// Null policy: Year, Runtime and Rating stay explicit bson nulls when the
// source value is unknown — never omitted and never zero, so the
// denormalized query forms can distinguish "no rating" from "rated 0".
// Genres and Cast are always present, possibly empty, never null.
type AggregateDocument struct {
	ID      string      `bson:"_id"`
	Title   string      `bson:"title"`
	Year    *int        `bson:"year"`
	Runtime *int        `bson:"runtime"`
	Genres  []string    `bson:"genres"`
	Rating  *RatingInfo `bson:"rating"`
	Cast    []CastEntry `bson:"cast"`
}

// RatingInfo is the embedded rating pair.
type RatingInfo struct {
	Average float64 `bson:"average"`
	Votes   int     `bson:"votes"`
}

// CastEntry is one embedded cast credit. Entries appear in source billing
// order and the list is truncated to the configured cap. Name is empty when
// the person reference could not be resolved at build time; the entry is
// kept so cast counts stay consistent with the source credit rows.
type CastEntry struct {
	PersonID string `bson:"person_id"`
	Name     string `bson:"name"`
	Category string `bson:"category"`
}
