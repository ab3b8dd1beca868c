package bench

// Pairs binds each logical query to its two forms. The order here is the
// report order.
func Pairs(sql *SQLQueries, mongo *MongoQueries) []Pair {
	return []Pair{
		{Name: "filmography", Normalized: sql.Filmography, Denormalized: mongo.Filmography},
		{Name: "top_by_genre", Normalized: sql.TopByGenre, Denormalized: mongo.TopByGenre},
		{Name: "multi_role", Normalized: sql.MultiRole, Denormalized: mongo.MultiRole},
		{Name: "collaborations", Normalized: sql.Collaborations, Denormalized: mongo.Collaborations},
		{Name: "popular_genres", Normalized: sql.PopularGenres, Denormalized: mongo.PopularGenres},
		{Name: "career_by_decade", Normalized: sql.CareerByDecade, Denormalized: mongo.CareerByDecade},
		{Name: "genre_ranking", Normalized: sql.GenreRanking, Denormalized: mongo.GenreRanking},
		{Name: "breakout", Normalized: sql.Breakout, Denormalized: mongo.Breakout},
		{Name: "prolific_actors", Normalized: sql.ProlificActors, Denormalized: mongo.ProlificActors},
		{Name: "point_lookup", Normalized: sql.PointLookup, Denormalized: mongo.PointLookup},
	}
}
