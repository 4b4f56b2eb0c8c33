package cli

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_core/internal/repositories/database/sqlite"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
	"github.com/SscSPs/ledger_core/pkg/database"
)

// openStorage returns the repositories for the configured driver and a func
// that releases them.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		if cfg.RunMigrations {
			if err := database.MigrateUp(database.EnginePostgres, cfg.DatabaseURL); err != nil {
				return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to migrate postgres: %w", err)
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			Ping:     cfg.EnableDBCheck,
		})
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Using postgres storage")
		return pgsql.NewRepositoryProvider(pool, cfg.PeriodTxRetries), func() { database.ClosePgxPool(pool) }, nil

	case config.DriverSQLite:
		if cfg.RunMigrations {
			if err := database.MigrateUp(database.EngineSQLite, cfg.SQLitePath); err != nil {
				return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to migrate sqlite: %w", err)
			}
		}
		handles, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Using sqlite storage", slog.String("path", cfg.SQLitePath))
		closeFn := func() {
			if err := handles.Close(); err != nil {
				logger.Error("Failed to close sqlite", slog.String("error", err.Error()))
			}
		}
		return sqlite.New(handles.Writer, handles.Reader).Provider(), closeFn, nil

	default:
		logger.Warn("Using in-memory storage; data is lost on exit")
		return memory.NewStore().Provider(), func() {}, nil
	}
}
