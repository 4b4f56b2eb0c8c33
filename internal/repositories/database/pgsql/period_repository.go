package pgsql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
)

const periodColumns = `period_id, name, start_date, end_date, is_closed, closed_at, fiscal_year_id,
		created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
	retries int
}

// newPgxPeriodRepository creates a new repository for accounting periods.
func newPgxPeriodRepository(pool *pgxpool.Pool, retries int) portsrepo.PeriodRepositoryFacade {
	if retries < 1 {
		retries = 1
	}
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}, retries: retries}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

func listPeriods(ctx context.Context, q querier) ([]domain.AccountingPeriod, error) {
	rows, err := q.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods ORDER BY start_date, period_id`)
	if err != nil {
		return nil, dbError(err, "failed to list accounting periods")
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.AccountingPeriod])
	if err != nil {
		return nil, dbError(err, "failed to scan accounting periods")
	}
	out := make([]domain.AccountingPeriod, len(found))
	for i, m := range found {
		out[i] = mapping.ToDomainPeriod(m)
	}
	return out, nil
}

// FindPeriodByID retrieves a period by its ID.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE period_id = $1`, periodID)
	if err != nil {
		return nil, dbError(err, "failed to query accounting period "+periodID)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.AccountingPeriod])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.PeriodError{Kind: domain.KindNotFound, PeriodID: periodID, Detail: "period not found"}
		}
		return nil, dbError(err, "failed to scan accounting period "+periodID)
	}
	d := mapping.ToDomainPeriod(m)
	return &d, nil
}

// ListPeriods returns every period ordered by start date.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	return listPeriods(ctx, r.Pool)
}

// MutatePeriods runs fn against the stored collection under an exclusive
// table lock in a serializable transaction, then writes the row difference.
// Serialization failures and deadlocks are retried with a fresh snapshot.
func (r *PgxPeriodRepository) MutatePeriods(ctx context.Context, fn portsrepo.PeriodMutation) ([]domain.AccountingPeriod, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	for attempt := 1; ; attempt++ {
		result, err := r.mutateOnce(ctx, fn)
		if err == nil {
			return result, nil
		}
		if !isRetryable(err) || attempt >= r.retries || ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("Period mutation conflicted, retrying", slog.Int("attempt", attempt), slog.String("error", err.Error()))
	}
}

func (r *PgxPeriodRepository) mutateOnce(ctx context.Context, fn portsrepo.PeriodMutation) ([]domain.AccountingPeriod, error) {
	var result []domain.AccountingPeriod
	err := r.withTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE accounting_periods IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return dbError(err, "failed to lock accounting periods")
		}
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

func writePeriodDiff(ctx context.Context, tx pgx.Tx, diff domain.PeriodDiff) error {
	if diff.IsEmpty() {
		return nil
	}
	batch := &pgx.Batch{}
	for _, id := range diff.Removed {
		batch.Queue(`DELETE FROM accounting_periods WHERE period_id = $1`, id)
	}
	for _, p := range diff.Added {
		m := mapping.ToModelPeriod(p)
		batch.Queue(`
			INSERT INTO accounting_periods (`+periodColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			m.PeriodID, m.Name, m.StartDate, m.EndDate, m.IsClosed, m.ClosedAt, m.FiscalYearID,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	}
	for _, p := range diff.Changed {
		m := mapping.ToModelPeriod(p)
		batch.Queue(`
			UPDATE accounting_periods
			SET name = $2, start_date = $3, end_date = $4, is_closed = $5, closed_at = $6, fiscal_year_id = $7,
			    last_updated_at = $8, last_updated_by = $9
			WHERE period_id = $1`,
			m.PeriodID, m.Name, m.StartDate, m.EndDate, m.IsClosed, m.ClosedAt, m.FiscalYearID,
			m.LastUpdatedAt, m.LastUpdatedBy)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return dbError(err, "failed to write accounting periods")
	}
	return nil
}
