package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cineexplorer/cinedoc/internal/aggregate"
	"github.com/cineexplorer/cinedoc/internal/db"
	"github.com/cineexplorer/cinedoc/internal/docstore"
	"github.com/cineexplorer/cinedoc/internal/join"
	"github.com/cineexplorer/cinedoc/internal/materialize"
	"github.com/cineexplorer/cinedoc/internal/personloader"
	"github.com/cineexplorer/cinedoc/internal/pipeline"
	"github.com/cineexplorer/cinedoc/internal/reader"
	"github.com/cineexplorer/cinedoc/internal/repository"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute the aggregate collection from the relational source",
	Long: `Recompute the aggregate collection from the relational source.

The destination collection is fully replaced; do not run concurrently
with the bench command, which would observe a partially written
snapshot.`,
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

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conn, err := db.NewConnection(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.ValidateSchema(ctx, conn.Pool); err != nil {
			return err
		}

		docClient, err := docstore.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer docClient.Close(context.Background())

		titleRepo := repository.NewTitleRepository(conn.Pool)
		relatedRepo := repository.NewRelatedRepository(conn.Pool)
		personRepo := repository.NewPersonRepository(conn.Pool)

		p := pipeline.New(
			reader.NewTitleReader(titleRepo, cfg.Pipeline.BatchSize),
			join.NewResolver(relatedRepo, cfg.Pipeline.CastCap, logger),
			aggregate.NewBuilder(personloader.NewPersonLoader(personRepo), logger),
			materialize.NewMaterializer(docstore.NewStore(docClient.Collection()), logger),
			cfg.Pipeline.StoreTimeout,
			logger,
		)

		report, err := p.Run(ctx)
		fmt.Printf("run %s: %d batches, %d documents, %d anomalies\n",
			report.RunID, report.Batches, report.Documents, report.Anomalies)
		if err != nil {
			return fmt.Errorf("run aborted after %d committed batches: %w", report.Batches, err)
		}
		return nil
	},
}
