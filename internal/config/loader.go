package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cineexplorer/cinedoc/internal/bench"
	"github.com/cineexplorer/cinedoc/internal/db"
	"github.com/cineexplorer/cinedoc/internal/docstore"
)

// PipelineConfig holds the rebuild knobs.
type PipelineConfig struct {
	BatchSize    int
	CastCap      int
	StoreTimeout time.Duration
}

// BenchConfig holds the benchmark knobs and default query parameters.
type BenchConfig struct {
	Runs   int
	Params bench.Params
}

// Config is the full application configuration.
type Config struct {
	Postgres db.Config
	Mongo    docstore.Config
	Pipeline PipelineConfig
	Bench    BenchConfig
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Postgres: db.DefaultConfig(),
		Mongo:    docstore.DefaultConfig(),
		Pipeline: PipelineConfig{
			BatchSize:    500,
			CastCap:      5,
			StoreTimeout: 10 * time.Second,
		},
		Bench: BenchConfig{
			Runs:   5,
			Params: bench.DefaultParams(),
		},
	}
}

// Load reads config.yaml from the given path, with environment overrides.
func Load(configPath string) (Config, error) {
	// Start with defaults
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()          // allow environment overrides
	v.SetEnvPrefix("CINEDOC") // map env vars like CINEDOC_DATABASE_HOST
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("mongo.uri")
	v.BindEnv("mongo.database")
	v.BindEnv("mongo.collection")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	}

	if v.IsSet("database.host") {
		cfg.Postgres.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Postgres.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Postgres.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Postgres.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Postgres.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Postgres.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("mongo.uri") {
		cfg.Mongo.URI = v.GetString("mongo.uri")
	}
	if v.IsSet("mongo.database") {
		cfg.Mongo.Database = v.GetString("mongo.database")
	}
	if v.IsSet("mongo.collection") {
		cfg.Mongo.Collection = v.GetString("mongo.collection")
	}

	if v.IsSet("pipeline.batch_size") {
		cfg.Pipeline.BatchSize = v.GetInt("pipeline.batch_size")
	}
	if v.IsSet("pipeline.cast_cap") {
		cfg.Pipeline.CastCap = v.GetInt("pipeline.cast_cap")
	}
	if v.IsSet("pipeline.store_timeout_sec") {
		cfg.Pipeline.StoreTimeout = time.Duration(v.GetInt("pipeline.store_timeout_sec")) * time.Second
		cfg.Mongo.Timeout = cfg.Pipeline.StoreTimeout
	}

	if v.IsSet("bench.runs") {
		cfg.Bench.Runs = v.GetInt("bench.runs")
	}
	if v.IsSet("bench.actor") {
		cfg.Bench.Params.Actor = v.GetString("bench.actor")
	}
	if v.IsSet("bench.genre") {
		cfg.Bench.Params.Genre = v.GetString("bench.genre")
	}
	if v.IsSet("bench.start_year") {
		cfg.Bench.Params.StartYear = v.GetInt("bench.start_year")
	}
	if v.IsSet("bench.end_year") {
		cfg.Bench.Params.EndYear = v.GetInt("bench.end_year")
	}
	if v.IsSet("bench.top_n") {
		cfg.Bench.Params.TopN = v.GetInt("bench.top_n")
	}
	if v.IsSet("bench.genre_floor") {
		cfg.Bench.Params.GenreFloor = v.GetInt("bench.genre_floor")
	}
	if v.IsSet("bench.rank_vote_floor") {
		cfg.Bench.Params.RankVoteFloor = v.GetInt("bench.rank_vote_floor")
	}
	if v.IsSet("bench.breakout_votes") {
		cfg.Bench.Params.BreakoutVotes = v.GetInt("bench.breakout_votes")
	}
	if v.IsSet("bench.title_id") {
		cfg.Bench.Params.TitleID = v.GetString("bench.title_id")
	}

	return cfg, nil
}
