package domain_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestRuleSettingsPatch(t *testing.T) {
	base := domain.DefaultRuleSettings()
	base.MaxEntryAmount = moneyPtr(500)

	patched := domain.RuleSettingsPatch{RequireApproval: boolPtr(true)}.Apply(base)
	assert.True(t, patched.RequireApproval)
	require.NotNil(t, patched.MaxEntryAmount)
	assert.NotSame(t, base.MaxEntryAmount, patched.MaxEntryAmount, "ceiling is copied")
	assert.False(t, base.RequireApproval, "input is not modified")

	cleared := domain.RuleSettingsPatch{ClearMaxEntryAmount: true}.Apply(base)
	assert.Nil(t, cleared.MaxEntryAmount)

	assert.True(t, domain.RuleSettingsPatch{}.IsEmpty())
	assert.False(t, domain.RuleSettingsPatch{ClearMaxEntryAmount: true}.IsEmpty())

	assert.ErrorIs(t, domain.RuleSettingsPatch{MaxEntryAmount: moneyPtr(0)}.Validate(), apperrors.ErrValidation)
	assert.ErrorIs(t, domain.RuleSettingsPatch{MaxEntryAmount: moneyPtr(1), ClearMaxEntryAmount: true}.Validate(), apperrors.ErrValidation)
	assert.NoError(t, domain.RuleSettingsPatch{MaxEntryAmount: moneyPtr(1)}.Validate())
}

func TestMoney(t *testing.T) {
	m, err := domain.MoneyFromDecimal(decimal.RequireFromString("12.34"))
	require.NoError(t, err)
	assert.Equal(t, domain.Money(1234), m)
	assert.Equal(t, "12.34", m.String())
	assert.Equal(t, "-0.05", domain.Money(-5).String())

	_, err = domain.MoneyFromDecimal(decimal.RequireFromString("0.001"))
	assert.Error(t, err)

	assert.Equal(t, domain.Money(10), domain.MustMoney("0.1"))
	assert.Equal(t, domain.Money(7), domain.Money(-7).Abs())

	m, err = domain.MoneyFromDecimal(decimal.RequireFromString("9999999999999.99"))
	require.NoError(t, err)
	assert.Equal(t, domain.MaxAmount, m)
	for _, raw := range []string{"10000000000000.00", "92233720368547758.07", "-10000000000000"} {
		_, err = domain.MoneyFromDecimal(decimal.RequireFromString(raw))
		assert.Error(t, err, raw)
	}
}

func TestMoneyCheckedArithmetic(t *testing.T) {
	sum, ok := domain.Money(2).Add(3)
	assert.True(t, ok)
	assert.Equal(t, domain.Money(5), sum)

	_, ok = domain.Money(math.MaxInt64).Add(1)
	assert.False(t, ok)
	_, ok = domain.Money(math.MinInt64).Add(-1)
	assert.False(t, ok)

	diff, ok := domain.Money(-1).Sub(math.MaxInt64)
	assert.True(t, ok)
	assert.Equal(t, domain.Money(math.MinInt64), diff)
	_, ok = domain.Money(-2).Sub(math.MaxInt64)
	assert.False(t, ok)
	_, ok = domain.Money(1).Sub(math.MinInt64)
	assert.False(t, ok)
}
