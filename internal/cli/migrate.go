package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations for the configured database",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, dsn, err := migrationTarget()
			if err != nil {
				return err
			}
			return database.MigrateUp(engine, dsn)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, dsn, err := migrationTarget()
			if err != nil {
				return err
			}
			return database.MigrateDown(engine, dsn, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func migrationTarget() (string, string, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return "", "", fmt.Errorf("failed to load config: %w", err)
	}
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return database.EnginePostgres, cfg.DatabaseURL, nil
	case config.DriverSQLite:
		return database.EngineSQLite, cfg.SQLitePath, nil
	default:
		return "", "", fmt.Errorf("storage driver %q has no schema to migrate", cfg.StorageDriver)
	}
}
