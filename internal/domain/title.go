// Package domain holds the relational row types read by the pipeline and
// the aggregate document shape it materializes. The pipeline never mutates
// the relational side; these row structs are read-only snapshots.
package domain

// Title is one row of the Movie table, the primary entity being
// denormalized. StartYear, EndYear and RuntimeMinutes carry the raw source
// text because the upstream import keeps the dataset's sentinel marker for
// unknown values; normalization to nullable integers happens in the
// aggregate builder.
type Title struct {
	ID             string
	Kind           string
	PrimaryTitle   string
	OriginalTitle  string
	IsAdult        bool
	StartYear      *string
	EndYear        *string
	RuntimeMinutes *string
}

// Person is one row of the Person table.
type Person struct {
	ID        string
	Name      string
	BirthYear *int
	DeathYear *int
}

// Rating is the one-to-one rating row for a title.
type Rating struct {
	TitleID string
	Average float64
	Votes   int
}

// GenreTag is one row of the MovieGenre join table.
type GenreTag struct {
	TitleID string
	Genre   string
}

// CreditRow is one row of the MoviePrincipal join table. Ordering is the
// source-assigned billing rank, ascending from 1.
type CreditRow struct {
	TitleID  string
	PersonID string
	Ordering int
	Category string
	Detail   string
}
