package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

func (s *Store) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.periods {
		if p.PeriodID == periodID {
			return &p, nil
		}
	}
	return nil, &domain.PeriodError{Kind: domain.KindNotFound, PeriodID: periodID, Detail: "period not found"}
}

func (s *Store) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	s.mu.RLock()
	out := make([]domain.AccountingPeriod, len(s.periods))
	copy(out, s.periods)
	s.mu.RUnlock()
	domain.SortPeriods(out)
	return out, nil
}

// MutatePeriods holds the write lock across fn, so the snapshot fn sees is
// the one its result replaces.
func (s *Store) MutatePeriods(ctx context.Context, fn portsrepo.PeriodMutation) ([]domain.AccountingPeriod, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]domain.AccountingPeriod, len(s.periods))
	copy(snapshot, s.periods)

	next, err := fn(snapshot)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, fmt.Errorf("period mutation returned no collection: %w", apperrors.ErrInternal)
	}
	stored := make([]domain.AccountingPeriod, len(next))
	copy(stored, next)
	domain.SortPeriods(stored)
	s.periods = stored

	out := make([]domain.AccountingPeriod, len(stored))
	copy(out, stored)
	return out, nil
}
