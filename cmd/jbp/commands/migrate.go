package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/jbp-analytics/internal/storage/migrations"
	"github.com/wonny/jbp-analytics/pkg/config"
	"github.com/wonny/jbp-analytics/pkg/database"
	"github.com/wonny/jbp-analytics/pkg/logger"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Applies the embedded SQL migrations to DATABASE_URL.
Migrations are idempotent and safe to run repeatedly.

Example:
  go run ./cmd/jbp migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	applied, err := migrations.RunPostgres(context.Background(), db.Pool)
	if err != nil {
		return err
	}

	for _, file := range applied {
		log.WithField("file", file).Info("Applied migration")
	}
	PrintSuccess(fmt.Sprintf("%d migrations applied", len(applied)))
	return nil
}
