package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/cineexplorer/cinedoc/internal/bench"
	"github.com/cineexplorer/cinedoc/internal/db"
	"github.com/cineexplorer/cinedoc/internal/docstore"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run every query pair against both models and report latencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := cmd.Context()

		conn, err := db.NewConnection(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer conn.Close()

		docClient, err := docstore.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer docClient.Close(context.Background())

		pairs := bench.Pairs(
			bench.NewSQLQueries(conn.Pool),
			bench.NewMongoQueries(docClient.Collection()),
		)

		harness := bench.NewHarness(cfg.Bench.Runs, logger)
		records := harness.Run(ctx, pairs, cfg.Bench.Params)
		return bench.WriteReport(os.Stdout, records)
	},
}
