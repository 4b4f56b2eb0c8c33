package accounting

import (
	"math"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSignedAmount(t *testing.T) {
	tests := []struct {
		name        string
		line        domain.JournalEntryLine
		accountType domain.AccountType
		want        domain.Money
		wantErr     bool
	}{
		{"debit asset", domain.JournalEntryLine{Debit: 500}, domain.Asset, 500, false},
		{"credit asset", domain.JournalEntryLine{Credit: 500}, domain.Asset, -500, false},
		{"debit expense", domain.JournalEntryLine{Debit: 75}, domain.Expense, 75, false},
		{"debit liability", domain.JournalEntryLine{Debit: 500}, domain.Liability, -500, false},
		{"credit revenue", domain.JournalEntryLine{Credit: 500}, domain.Revenue, 500, false},
		{"credit equity", domain.JournalEntryLine{Credit: 10}, domain.Equity, 10, false},
		{"unknown type", domain.JournalEntryLine{Debit: 1, AccountID: "x"}, domain.AccountType("BOGUS"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSignedAmount(tt.line, tt.accountType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBalanceChanges(t *testing.T) {
	types := map[string]domain.AccountType{
		"1120": domain.Asset,
		"1200": domain.Asset,
		"2100": domain.Liability,
	}

	changes, err := BalanceChanges([]domain.JournalEntryLine{
		{AccountID: "1120", Debit: 5000},
		{AccountID: "1200", Credit: 5000},
	}, types)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(5000), changes["1120"])
	assert.Equal(t, domain.Money(-5000), changes["1200"])

	changes, err = BalanceChanges([]domain.JournalEntryLine{
		{AccountID: "2100", Debit: 300, Credit: 100},
	}, types)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(-200), changes["2100"])

	_, err = BalanceChanges([]domain.JournalEntryLine{{AccountID: "9999", Debit: 1}}, types)
	assert.Error(t, err)
}

func TestBalanceChangesRejectsOverflow(t *testing.T) {
	types := map[string]domain.AccountType{"1110": domain.Asset}

	_, err := BalanceChanges([]domain.JournalEntryLine{
		{AccountID: "1110", Debit: math.MaxInt64},
	}, types)
	assert.Error(t, err, "a single amount beyond MaxAmount is refused")

	lines := make([]domain.JournalEntryLine, 0, 10)
	for i := 0; i < 10; i++ {
		lines = append(lines, domain.JournalEntryLine{AccountID: "1110", Debit: domain.MaxAmount})
	}
	_, err = BalanceChanges(lines, types)
	assert.NoError(t, err, "ten maximal amounts still fit")
}

func TestApplyBalanceChange(t *testing.T) {
	got, err := ApplyBalanceChange("1110", 100, -250)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(-150), got)

	_, err = ApplyBalanceChange("1110", math.MaxInt64-5, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = ApplyBalanceChange("1110", math.MinInt64+5, -10)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
