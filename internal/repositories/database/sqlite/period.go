package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
)

const periodColumns = `period_id, name, start_date, end_date, is_closed, closed_at, fiscal_year_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row rowScanner) (domain.AccountingPeriod, error) {
	var (
		m          models.AccountingPeriod
		start, end string
		closedAt   sql.NullString
		audit      auditColumns
	)
	dest := append([]any{&m.PeriodID, &m.Name, &start, &end, &m.IsClosed, &closedAt, &m.FiscalYearID}, audit.dest()...)
	if err := row.Scan(dest...); err != nil {
		return domain.AccountingPeriod{}, err
	}
	var err error
	if m.StartDate, err = parseDate(start); err != nil {
		return domain.AccountingPeriod{}, err
	}
	if m.EndDate, err = parseDate(end); err != nil {
		return domain.AccountingPeriod{}, err
	}
	if closedAt.Valid {
		t, err := parseTime(closedAt.String)
		if err != nil {
			return domain.AccountingPeriod{}, err
		}
		m.ClosedAt = &t
	}
	if m.CreatedAt, m.LastUpdatedAt, err = audit.parse(); err != nil {
		return domain.AccountingPeriod{}, err
	}
	m.CreatedBy, m.LastUpdatedBy = audit.createdBy, audit.updatedBy
	return mapping.ToDomainPeriod(m), nil
}

func listPeriods(ctx context.Context, q queryer) ([]domain.AccountingPeriod, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+periodColumns+` FROM accounting_periods ORDER BY start_date, period_id`)
	if err != nil {
		return nil, dbError(err, "failed to list accounting periods")
	}
	defer rows.Close()

	out := []domain.AccountingPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan accounting period row")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "error iterating accounting period rows")
	}
	return out, nil
}

func (s *Store) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	p, err := scanPeriod(s.reader.QueryRowContext(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE period_id = ?`, periodID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.PeriodError{Kind: domain.KindNotFound, PeriodID: periodID, Detail: "period not found"}
	}
	if err != nil {
		return nil, dbError(err, "failed to find accounting period "+periodID)
	}
	return &p, nil
}

func (s *Store) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	return listPeriods(ctx, s.reader)
}

// MutatePeriods reads and rewrites the collection inside one writer
// transaction. The single writer connection serializes it against every
// other write.
func (s *Store) MutatePeriods(ctx context.Context, fn portsrepo.PeriodMutation) ([]domain.AccountingPeriod, error) {
	var result []domain.AccountingPeriod
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := listPeriods(ctx, tx)
		if err != nil {
			return err
		}
		snapshot := make([]domain.AccountingPeriod, len(current))
		copy(snapshot, current)

		next, err := fn(snapshot)
		if err != nil {
			return err
		}
		if next == nil {
			return apperrors.NewAppError(apperrors.ErrInternal, "period mutation returned no collection", nil)
		}
		if err := writePeriodDiff(ctx, tx, domain.DiffPeriods(current, next)); err != nil {
			return err
		}
		result = make([]domain.AccountingPeriod, len(next))
		copy(result, next)
		domain.SortPeriods(result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func closedAtArg(m models.AccountingPeriod) sql.NullString {
	if m.ClosedAt == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*m.ClosedAt), Valid: true}
}

func writePeriodDiff(ctx context.Context, tx *sql.Tx, diff domain.PeriodDiff) error {
	for _, id := range diff.Removed {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounting_periods WHERE period_id = ?`, id); err != nil {
			return dbError(err, "failed to delete accounting period "+id)
		}
	}
	for _, p := range diff.Added {
		m := mapping.ToModelPeriod(p)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounting_periods (`+periodColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.PeriodID, m.Name, formatDate(m.StartDate), formatDate(m.EndDate), m.IsClosed, closedAtArg(m), m.FiscalYearID,
			formatTime(m.CreatedAt), m.CreatedBy, formatTime(m.LastUpdatedAt), m.LastUpdatedBy)
		if err != nil {
			return dbError(err, "failed to insert accounting period "+m.PeriodID)
		}
	}
	for _, p := range diff.Changed {
		m := mapping.ToModelPeriod(p)
		_, err := tx.ExecContext(ctx, `
			UPDATE accounting_periods
			SET name = ?, start_date = ?, end_date = ?, is_closed = ?, closed_at = ?, fiscal_year_id = ?,
			    last_updated_at = ?, last_updated_by = ?
			WHERE period_id = ?`,
			m.Name, formatDate(m.StartDate), formatDate(m.EndDate), m.IsClosed, closedAtArg(m), m.FiscalYearID,
			formatTime(m.LastUpdatedAt), m.LastUpdatedBy, m.PeriodID)
		if err != nil {
			return dbError(err, "failed to update accounting period "+m.PeriodID)
		}
	}
	return nil
}
