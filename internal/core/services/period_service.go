package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// periodService runs the period lifecycle. Each mutation is a pure function
// from the current collection to the next one, handed to the repository so the
// check and the write happen in one serialized step.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepositoryFacade
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(repo portsrepo.PeriodRepositoryFacade, options ...ServiceOption) portssvc.PeriodSvcFacade {
	return &periodService{
		BaseService: newBaseService(options...),
		periodRepo:  repo,
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

func (s *periodService) GetPeriod(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	p, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get period", slog.String("period_id", periodID))
		return nil, err
	}
	return p, nil
}

func (s *periodService) ListPeriods(ctx context.Context, filter domain.PeriodFilter) ([]domain.AccountingPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list periods")
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return domain.FilterPeriods(periods, filter), nil
}

func (s *periodService) EnsureOpen(ctx context.Context, date time.Time) error {
	periods, err := s.periodRepo.ListPeriods(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list periods")
		return fmt.Errorf("failed to list periods: %w", err)
	}
	return domain.EnsureOpenIn(periods, date)
}

func (s *periodService) CreatePeriod(ctx context.Context, in domain.PeriodInput, actor string) (*domain.AccountingPeriod, error) {
	p := domain.NewPeriod(s.newID(), in, actor, s.now())
	_, err := s.periodRepo.MutatePeriods(ctx, func(current []domain.AccountingPeriod) ([]domain.AccountingPeriod, error) {
		return domain.InsertPeriod(current, p)
	})
	s.Audit(ctx, domain.OpCreatePeriod, p.PeriodID, actor, err)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create period",
			slog.String("name", p.Name),
			slog.String("start_date", p.StartDate.Format(domain.DateLayout)),
			slog.String("end_date", p.EndDate.Format(domain.DateLayout)))
		return nil, err
	}
	s.LogInfo(ctx, "Period created", slog.String("period_id", p.PeriodID), slog.String("name", p.Name))
	return &p, nil
}

func (s *periodService) UpdatePeriod(ctx context.Context, periodID string, patch domain.PeriodPatch, actor string) (*domain.AccountingPeriod, error) {
	return s.mutateOne(ctx, domain.OpUpdatePeriod, periodID, actor,
		func(current []domain.AccountingPeriod, now time.Time) ([]domain.AccountingPeriod, domain.AccountingPeriod, error) {
			return domain.ReplacePeriod(current, periodID, patch, actor, now)
		})
}

func (s *periodService) ClosePeriod(ctx context.Context, periodID string, actor string) (*domain.AccountingPeriod, error) {
	return s.mutateOne(ctx, domain.OpClosePeriod, periodID, actor,
		func(current []domain.AccountingPeriod, now time.Time) ([]domain.AccountingPeriod, domain.AccountingPeriod, error) {
			return domain.ClosePeriodIn(current, periodID, actor, now)
		})
}

func (s *periodService) ReopenPeriod(ctx context.Context, periodID string, actor string) (*domain.AccountingPeriod, error) {
	return s.mutateOne(ctx, domain.OpReopenPeriod, periodID, actor,
		func(current []domain.AccountingPeriod, now time.Time) ([]domain.AccountingPeriod, domain.AccountingPeriod, error) {
			return domain.ReopenPeriodIn(current, periodID, actor, now)
		})
}

func (s *periodService) DeletePeriod(ctx context.Context, periodID string, actor string) error {
	_, err := s.periodRepo.MutatePeriods(ctx, func(current []domain.AccountingPeriod) ([]domain.AccountingPeriod, error) {
		return domain.RemovePeriod(current, periodID)
	})
	s.Audit(ctx, domain.OpDeletePeriod, periodID, actor, err)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete period", slog.String("period_id", periodID))
		return err
	}
	s.LogInfo(ctx, "Period deleted", slog.String("period_id", periodID))
	return nil
}

type singlePeriodMutation func(current []domain.AccountingPeriod, now time.Time) ([]domain.AccountingPeriod, domain.AccountingPeriod, error)

// mutateOne runs a mutation that targets one period and returns that period's
// new state.
func (s *periodService) mutateOne(ctx context.Context, op, periodID, actor string, fn singlePeriodMutation) (*domain.AccountingPeriod, error) {
	now := s.now()
	var result domain.AccountingPeriod
	_, err := s.periodRepo.MutatePeriods(ctx, func(current []domain.AccountingPeriod) ([]domain.AccountingPeriod, error) {
		next, p, err := fn(current, now)
		if err != nil {
			return nil, err
		}
		result = p
		return next, nil
	})
	s.Audit(ctx, op, periodID, actor, err)
	if err != nil {
		s.LogFailure(ctx, err, "Period operation failed", slog.String("operation", op), slog.String("period_id", periodID))
		return nil, err
	}
	s.LogInfo(ctx, "Period updated", slog.String("operation", op), slog.String("period_id", periodID))
	return &result, nil
}
