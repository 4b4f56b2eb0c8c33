package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// PeriodReaderSvc defines read operations for accounting periods
type PeriodReaderSvc interface {
	GetPeriod(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// ListPeriods returns the periods matching filter ordered by start date.
	ListPeriods(ctx context.Context, filter domain.PeriodFilter) ([]domain.AccountingPeriod, error)

	// EnsureOpen returns nil when date falls inside an open period.
	EnsureOpen(ctx context.Context, date time.Time) error
}

// PeriodWriterSvc defines the period lifecycle. Every call is serialized
// against the whole period collection.
type PeriodWriterSvc interface {
	CreatePeriod(ctx context.Context, in domain.PeriodInput, actor string) (*domain.AccountingPeriod, error)
	UpdatePeriod(ctx context.Context, periodID string, patch domain.PeriodPatch, actor string) (*domain.AccountingPeriod, error)
	ClosePeriod(ctx context.Context, periodID string, actor string) (*domain.AccountingPeriod, error)
	ReopenPeriod(ctx context.Context, periodID string, actor string) (*domain.AccountingPeriod, error)
	DeletePeriod(ctx context.Context, periodID string, actor string) error
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	PeriodReaderSvc
	PeriodWriterSvc
}
