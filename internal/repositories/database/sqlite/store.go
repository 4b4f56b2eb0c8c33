// Package sqlite stores the ledger in a single SQLite file. Writes go
// through a one-connection writer handle, reads through a separate pool.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements every repository port on SQLite.
type Store struct {
	writer *sql.DB
	reader *sql.DB
}

// New wraps already opened writer and reader handles. The writer must be
// limited to one open connection.
func New(writer, reader *sql.DB) *Store {
	return &Store{writer: writer, reader: reader}
}

// Provider exposes the store through the repository ports.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  s,
		JournalRepo:  s,
		PeriodRepo:   s,
		SettingsRepo: s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.PeriodRepositoryFacade  = (*Store)(nil)
	_ portsrepo.SettingsRepository      = (*Store)(nil)
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a writer transaction. The writer has a single
// connection, so write transactions never interleave.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback() // no-op once committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewAppError(apperrors.ErrInternal, "failed to commit transaction", err)
	}
	return nil
}

// dbError maps a driver error to the application sentinels.
func dbError(err error, message string) error {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperrors.NewAppError(apperrors.ErrDuplicate, message, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return apperrors.NewAppError(apperrors.ErrNotFound, message, err)
		}
	}
	return apperrors.NewAppError(apperrors.ErrInternal, message, err)
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatDate(t time.Time) string {
	return domain.DateOf(t).Format(domain.DateLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return t, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

// auditColumns holds the four audit columns as scanned text.
type auditColumns struct {
	createdAt, createdBy, updatedAt, updatedBy string
}

func (a *auditColumns) dest() []any {
	return []any{&a.createdAt, &a.createdBy, &a.updatedAt, &a.updatedBy}
}

func (a auditColumns) parse() (created, updated time.Time, err error) {
	if created, err = parseTime(a.createdAt); err != nil {
		return
	}
	updated, err = parseTime(a.updatedAt)
	return
}
