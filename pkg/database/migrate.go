package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/SscSPs/ledger_core/internal/repositories/database/migrations"
)

// Engines understood by Migrate.
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// MigrateUp applies every pending migration for engine. dsn is a PostgreSQL
// URL or an SQLite file path. A dedicated connection is opened and closed here
// so the application pools are never handed to the migrator.
func MigrateUp(engine, dsn string) error {
	m, err := newMigrator(engine, dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("No new migrations to apply", slog.String("engine", engine))
		return nil
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil {
		return fmt.Errorf("failed to read migration version: %w", verr)
	}
	if dirty {
		return fmt.Errorf("database is dirty at migration version %d", version)
	}
	slog.Info("Database migrations applied", slog.String("engine", engine), slog.Uint64("version", uint64(version)))
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(engine, dsn string, steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive")
	}
	m, err := newMigrator(engine, dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

func newMigrator(engine, dsn string) (*migrate.Migrate, error) {
	var (
		fsys   fs.FS
		dir    string
		db     *sql.DB
		driver database.Driver
		err    error
	)
	switch engine {
	case EnginePostgres:
		fsys, dir = migrations.Postgres, "postgres"
		if db, err = sql.Open("pgx", dsn); err != nil {
			return nil, fmt.Errorf("failed to open database for migrations: %w", err)
		}
		if err = db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database for migrations: %w", err)
		}
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case EngineSQLite:
		fsys, dir = migrations.SQLite, "sqlite"
		if db, err = sql.Open("sqlite", SQLiteDSN(dsn)); err != nil {
			return nil, fmt.Errorf("failed to open database for migrations: %w", err)
		}
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration engine %q", engine)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create %s migration driver: %w", engine, err)
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, engine, driver)
	if err != nil {
		src.Close()
		driver.Close()
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		slog.Error("Migration source error", slog.String("error", sourceErr.Error()))
	}
	if dbErr != nil {
		slog.Error("Migration database error", slog.String("error", dbErr.Error()))
	}
}
