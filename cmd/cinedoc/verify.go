package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cineexplorer/cinedoc/internal/bench"
	"github.com/cineexplorer/cinedoc/internal/db"
	"github.com/cineexplorer/cinedoc/internal/docstore"
	"github.com/cineexplorer/cinedoc/internal/repository"
)

var verifyQuery string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check aggregate cardinality and cross-model result equivalence",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

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

		titles, err := repository.NewTitleRepository(conn.Pool).Count(ctx)
		if err != nil {
			return err
		}
		docs, err := docstore.NewStore(docClient.Collection()).Count(ctx)
		if err != nil {
			return err
		}
		if titles == docs {
			fmt.Printf("cardinality: OK (%d documents)\n", docs)
		} else {
			fmt.Printf("cardinality: MISMATCH (%d titles, %d documents)\n", titles, docs)
		}

		pairs := bench.Pairs(
			bench.NewSQLQueries(conn.Pool),
			bench.NewMongoQueries(docClient.Collection()),
		)
		for _, pair := range pairs {
			if verifyQuery != "" && pair.Name != verifyQuery {
				continue
			}
			eq, err := bench.VerifyEquivalence(ctx, pair, cfg.Bench.Params)
			if err != nil {
				fmt.Printf("%s: ERROR (%v)\n", pair.Name, err)
				continue
			}
			if eq.Equivalent {
				fmt.Printf("%s: equivalent\n", pair.Name)
				continue
			}
			fmt.Printf("%s: MISMATCH (%d only normalized, %d only denormalized)\n",
				pair.Name, len(eq.OnlyNormalized), len(eq.OnlyDenormalized))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyQuery, "query", "", "logical query to verify (default all)")
}
