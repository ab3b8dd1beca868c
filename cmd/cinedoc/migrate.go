package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cineexplorer/cinedoc/internal/db"
)

var migrationsPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the relational source schema to a dev/test database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := db.RunMigrations(cfg.Postgres, migrationsPath); err != nil {
			return err
		}
		fmt.Println("Migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsPath, "migrations", "./migrations", "migrations directory")
}
