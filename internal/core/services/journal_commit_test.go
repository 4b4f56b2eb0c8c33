package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
)

// staleListing serves a frozen period list to the services while writes still
// reach the store, the way a read taken just before a concurrent close would.
type staleListing struct {
	*memory.Store
	frozen []domain.AccountingPeriod
}

func (s *staleListing) ListPeriods(context.Context) ([]domain.AccountingPeriod, error) {
	return s.frozen, nil
}

func TestPostEntry_PeriodClosedAfterServiceCheck(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	periods := &staleListing{Store: store}
	provider := portsrepo.RepositoryProvider{
		AccountRepo:  store,
		JournalRepo:  store,
		PeriodRepo:   periods,
		SettingsRepo: store,
	}
	container, err := services.NewServiceContainer(ctx, &config.Config{Rules: domain.DefaultRuleSettings()}, provider, &recordingSink{},
		services.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	_, err = container.Chart.SeedDefaultChart(ctx, actor)
	require.NoError(t, err)

	p, err := container.Period.CreatePeriod(ctx, domain.PeriodInput{
		Name: "Q1", StartDate: day("2024-01-01"), EndDate: day("2024-03-31"),
	}, actor)
	require.NoError(t, err)
	periods.frozen, err = store.ListPeriods(ctx)
	require.NoError(t, err)

	entry, err := container.Journal.CreateEntry(ctx, saleInput("Late sale", 1000), actor)
	require.NoError(t, err)
	_, err = container.Period.ClosePeriod(ctx, p.PeriodID, actor)
	require.NoError(t, err)

	_, err = container.Journal.PostEntry(ctx, entry.EntryID, actor)
	var periodErr *domain.PeriodError
	require.True(t, errors.As(err, &periodErr), "got %v", err)
	assert.Equal(t, domain.KindPeriodClosed, periodErr.Kind)

	stored, err := container.Journal.GetEntry(ctx, entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, stored.Status)
	cash, err := store.FindAccountByID(ctx, "1110")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(0), cash.Balance)
}
