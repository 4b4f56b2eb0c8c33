package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

func TestSeedDefaultChartIsIdempotent(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()

	accounts, err := h.container.Chart.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, len(domain.DefaultChart))

	n, err := h.container.Chart.SeedDefaultChart(ctx, actor)
	require.NoError(t, err)
	assert.Zero(t, n)

	issues, err := h.container.Chart.CheckHierarchy(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCreateAccount(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()
	chart := h.container.Chart

	acc, err := chart.CreateAccount(ctx, portssvc.CreateAccountInput{
		Number: "1150", Name: " Petty Cash ", AccountType: domain.Asset, ParentAccountID: "1100",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, "1150", acc.AccountID)
	assert.Equal(t, "Petty Cash", acc.Name)
	assert.True(t, acc.IsActive)

	found, err := chart.LookupAccount(ctx, "1150")
	require.NoError(t, err)
	assert.Equal(t, "Petty Cash", found.Name)

	_, err = chart.CreateAccount(ctx, portssvc.CreateAccountInput{
		Number: "1160", Name: "Orphan", AccountType: domain.Asset, ParentAccountID: "9999",
	}, actor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = chart.CreateAccount(ctx, portssvc.CreateAccountInput{Number: "1170", Name: "Bad", AccountType: "OTHER"}, actor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = chart.CreateAccount(ctx, portssvc.CreateAccountInput{Number: "1150", Name: "Again", AccountType: domain.Asset}, actor)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	_, err = chart.LookupAccount(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTypeMismatchIsReportedNotRejected(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()

	_, err := h.container.Chart.CreateAccount(ctx, portssvc.CreateAccountInput{
		Number: "1190", Name: "Misfiled", AccountType: domain.Expense, ParentAccountID: "1100",
	}, actor)
	require.NoError(t, err)

	issues, err := h.container.Chart.CheckHierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "1190", issues[0].AccountID)
	assert.Contains(t, issues[0].Problem, domain.IssueTypeMismatch)
}

func TestTrialBalanceAfterPosting(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()
	h.openPeriod(t, "2024-01-01", "2024-03-31")

	for _, amount := range []domain.Money{1500, 2500} {
		entry, err := h.container.Journal.CreateEntry(ctx, saleInput("sale "+amount.String(), amount), actor)
		require.NoError(t, err)
		_, err = h.container.Journal.PostEntry(ctx, entry.EntryID, actor)
		require.NoError(t, err)
	}

	tb, err := h.container.Chart.TrialBalance(ctx)
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	assert.Equal(t, domain.Money(4000), tb.TotalDebit)
	require.Len(t, tb.Rows, 2)
	assert.Equal(t, "1110", tb.Rows[0].AccountID)
	assert.Equal(t, "4100", tb.Rows[1].AccountID)
}
