package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// PeriodMutation computes the next period collection from a snapshot of the
// current one. It must not retain or modify current, and may be called more
// than once when the store retries.
type PeriodMutation func(current []domain.AccountingPeriod) ([]domain.AccountingPeriod, error)

// PeriodReader defines read operations for accounting periods
type PeriodReader interface {
	// FindPeriodByID retrieves a period or apperrors.ErrNotFound.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// ListPeriods returns every period ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error)
}

// PeriodWriter defines write operations for accounting periods
type PeriodWriter interface {
	// MutatePeriods reads the whole collection, applies fn, and persists the result as
	// one serialized step. No other mutation can interleave between the read and the write.
	// An error from fn is returned unchanged and nothing is written.
	MutatePeriods(ctx context.Context, fn PeriodMutation) ([]domain.AccountingPeriod, error)
}

// PeriodRepositoryFacade combines all period-related repository interfaces
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
