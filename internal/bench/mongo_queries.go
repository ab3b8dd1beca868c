package bench

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var actingCategories = bson.A{"actor", "actress"}

// MongoQueries holds the denormalized forms, expressed as filters and
// aggregation pipelines over the single aggregate collection.
type MongoQueries struct {
	coll *mongo.Collection
}

// NewMongoQueries creates the denormalized query set.
func NewMongoQueries(coll *mongo.Collection) *MongoQueries {
	return &MongoQueries{coll: coll}
}

// Filmography returns (title, year) pairs for an actor's acting credits.
func (q *MongoQueries) Filmography(ctx context.Context, p Params) (Result, error) {
	cursor, err := q.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "cast", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
				{Key: "name", Value: p.Actor},
				{Key: "category", Value: bson.D{{Key: "$in", Value: actingCategories}}},
			}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "year", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("filmography pipeline: %w", err)
	}
	return drain(ctx, cursor, func(c *mongo.Cursor) (string, error) {
		var row struct {
			Title string `bson:"title"`
			Year  *int   `bson:"year"`
		}
		if err := c.Decode(&row); err != nil {
			return "", err
		}
		return row.Title + "|" + keyInt(row.Year), nil
	})
}

// topByGenreFilter excludes unrated documents so the form stays
// set-equivalent with the relational join against Rating; without the
// guard, null-rated documents sort last and pad sparse ranges.
func topByGenreFilter(p Params) bson.D {
	return bson.D{
		{Key: "genres", Value: p.Genre},
		{Key: "year", Value: bson.D{
			{Key: "$gte", Value: p.StartYear},
			{Key: "$lte", Value: p.EndYear},
		}},
		{Key: "rating", Value: bson.D{{Key: "$ne", Value: nil}}},
	}
}

// TopByGenre returns the best-rated titles of a genre within a year range.
func (q *MongoQueries) TopByGenre(ctx context.Context, p Params) (Result, error) {
	filter := topByGenreFilter(p)
	opts := options.Find().
		SetSort(bson.D{
			{Key: "rating.average", Value: -1},
			{Key: "rating.votes", Value: -1},
			{Key: "_id", Value: 1},
		}).
		SetLimit(int64(p.TopN)).
		SetProjection(bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 0}})

	cursor, err := q.coll.Find(ctx, filter, opts)
	if err != nil {
		return Result{}, fmt.Errorf("top-by-genre find: %w", err)
	}
	return drain(ctx, cursor, decodeTitle)
}

// MultiRole returns (movie, person) pairs appearing more than once in a
// title's embedded cast.
func (q *MongoQueries) MultiRole(ctx context.Context, p Params) (Result, error) {
	cursor, err := q.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$cast"}},
		{{Key: "$match", Value: bson.D{
			{Key: "cast.category", Value: bson.D{{Key: "$in", Value: actingCategories}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "m", Value: "$_id"},
				{Key: "p", Value: "$cast.person_id"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "count", Value: bson.D{{Key: "$gt", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id.m", Value: 1},
			{Key: "_id.p", Value: 1},
		}}},
		{{Key: "$limit", Value: 10}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("multi-role pipeline: %w", err)
	}
	return drain(ctx, cursor, func(c *mongo.Cursor) (string, error) {
		var row struct {
			ID struct {
				M string `bson:"m"`
				P string `bson:"p"`
			} `bson:"_id"`
		}
		if err := c.Decode(&row); err != nil {
			return "", err
		}
		return row.ID.M + "|" + row.ID.P, nil
	})
}

// Collaborations returns directors sharing titles with the given actor.
func (q *MongoQueries) Collaborations(ctx context.Context, p Params) (Result, error) {
	cursor, err := q.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "cast", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
				{Key: "name", Value: p.Actor},
				{Key: "category", Value: bson.D{{Key: "$in", Value: actingCategories}}},
			}}}},
		}}},
		{{Key: "$unwind", Value: "$cast"}},
		{{Key: "$match", Value: bson.D{{Key: "cast.category", Value: "director"}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$cast.name"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("collaborations pipeline: %w", err)
	}
	return drain(ctx, cursor, decodeID)
}

// PopularGenres returns genres whose rated titles average above 7.0 with
// more than GenreFloor titles.
func (q *MongoQueries) PopularGenres(ctx context.Context, p Params) (Result, error) {
	cursor, err := q.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "rating", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
		{{Key: "$unwind", Value: "$genres"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genres"},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$rating.average"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "avg", Value: bson.D{{Key: "$gt", Value: 7.0}}},
			{Key: "count", Value: bson.D{{Key: "$gt", Value: p.GenreFloor}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avg", Value: -1}, {Key: "count", Value: -1}}}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("popular-genres pipeline: %w", err)
	}
	return drain(ctx, cursor, decodeID)
}

// CareerByDecade returns the actor's title count per decade.
func (q *MongoQueries) CareerByDecade(ctx context.Context, p Params) (Result, error) {
	cursor, err := q.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "cast", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
				{Key: "name", Value: p.Actor},
				{Key: "category", Value: bson.D{{Key: "$in", Value: actingCategories}}},
			}}}},
			{Key: "year", Value: bson.D{{Key: "$ne", Value: nil}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "decade", Value: bson.D{{Key: "$subtract", Value: bson.A{
				"$year",
				bson.D{{Key: "$mod", Value: bson.A{"$year", 10}}},
			}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$decade"},
			{Key: "films", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("career-by-decade pipeline: %w", err)
	}
	return drain(ctx, cursor, func(c *mongo.Cursor) (string, error) {
		var row struct {
			ID    int `bson:"_id"`
			Films int `bson:"films"`
		}
		if err := c.Decode(&row); err != nil {
			return "", err
		}
		return strconv.Itoa(row.ID) + "|" + strconv.Itoa(row.Films), nil
	})
}

// GenreRanking returns the top three titles per genre among titles above
// the rank vote floor.
func (q *MongoQueries) GenreRanking(ctx context.Context, p Params) (Result, error) {
	cursor, err := q.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "rating.votes", Value: bson.D{{Key: "$gt", Value: p.RankVoteFloor}}},
		}}},
		{{Key: "$unwind", Value: "$genres"}},
		{{Key: "$sort", Value: bson.D{
			{Key: "rating.average", Value: -1},
			{Key: "rating.votes", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genres"},
			{Key: "titles", Value: bson.D{{Key: "$push", Value: "$title"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "titles", Value: bson.D{{Key: "$slice", Value: bson.A{"$titles", 3}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("genre-ranking pipeline: %w", err)
	}

	defer cursor.Close(ctx)
	var result Result
	for cursor.Next(ctx) {
		var row struct {
			ID     string   `bson:"_id"`
			Titles []string `bson:"titles"`
		}
		if err := cursor.Decode(&row); err != nil {
			return Result{}, err
		}
		for _, title := range row.Titles {
			result.Keys = append(result.Keys, row.ID+"|"+title)
			result.Count++
		}
	}
	if err := cursor.Err(); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Breakout returns persons credited both below and above the vote
// threshold.
func (q *MongoQueries) Breakout(ctx context.Context, p Params) (Result, error) {
	cursor, err := q.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "rating", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
		{{Key: "$unwind", Value: "$cast"}},
		{{Key: "$match", Value: bson.D{
			{Key: "cast.category", Value: bson.D{{Key: "$in", Value: bson.A{"actor", "actress", "director"}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$cast.name"},
			{Key: "maxVotes", Value: bson.D{{Key: "$max", Value: "$rating.votes"}}},
			{Key: "minVotes", Value: bson.D{{Key: "$min", Value: "$rating.votes"}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "maxVotes", Value: bson.D{{Key: "$gt", Value: p.BreakoutVotes}}},
			{Key: "minVotes", Value: bson.D{{Key: "$lt", Value: p.BreakoutVotes}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 10}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("breakout pipeline: %w", err)
	}
	return drain(ctx, cursor, decodeID)
}

// ProlificActors returns actors with at least ten rated titles averaging
// above 7.0 who never directed.
func (q *MongoQueries) ProlificActors(ctx context.Context, p Params) (Result, error) {
	inActing := bson.D{{Key: "$in", Value: bson.A{"$cast.category", actingCategories}}}

	cursor, err := q.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "rating", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
		{{Key: "$unwind", Value: "$cast"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$cast.person_id"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$cast.name"}}},
			{Key: "acted", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{inActing, 1, 0}},
			}}}},
			{Key: "directed", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$cast.category", "director"}}}, 1, 0,
				}},
			}}}},
			{Key: "ratingSum", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{inActing, "$rating.average", 0}},
			}}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "directed", Value: 0},
			{Key: "acted", Value: bson.D{{Key: "$gte", Value: 10}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "acted", Value: 1},
			{Key: "avg", Value: bson.D{{Key: "$divide", Value: bson.A{"$ratingSum", "$acted"}}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "avg", Value: bson.D{{Key: "$gt", Value: 7.0}}}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "avg", Value: -1},
			{Key: "acted", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: 10}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("prolific-actors pipeline: %w", err)
	}
	return drain(ctx, cursor, func(c *mongo.Cursor) (string, error) {
		var row struct {
			Name string `bson:"name"`
		}
		if err := c.Decode(&row); err != nil {
			return "", err
		}
		return row.Name, nil
	})
}

// PointLookup fetches one title as a single self-contained document.
func (q *MongoQueries) PointLookup(ctx context.Context, p Params) (Result, error) {
	var doc bson.M
	err := q.coll.FindOne(ctx, bson.D{{Key: "_id", Value: p.TitleID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("point-lookup find: %w", err)
	}
	return Result{Count: 1, Keys: []string{p.TitleID}}, nil
}

// drain exhausts the cursor, building the canonical key per document.
func drain(ctx context.Context, cursor *mongo.Cursor, decode func(*mongo.Cursor) (string, error)) (Result, error) {
	defer cursor.Close(ctx)

	var result Result
	for cursor.Next(ctx) {
		key, err := decode(cursor)
		if err != nil {
			return Result{}, err
		}
		result.Keys = append(result.Keys, key)
		result.Count++
	}
	if err := cursor.Err(); err != nil {
		return Result{}, err
	}
	return result, nil
}

func decodeTitle(c *mongo.Cursor) (string, error) {
	var row struct {
		Title string `bson:"title"`
	}
	err := c.Decode(&row)
	return row.Title, err
}

func decodeID(c *mongo.Cursor) (string, error) {
	var row struct {
		ID string `bson:"_id"`
	}
	err := c.Decode(&row)
	return row.ID, err
}
