package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places carried by Money.
const MoneyScale = 2

// Money is an amount in integer minor units (cents). Balance checks are done
// on Money so they are exact.
type Money int64

// MaxAmount bounds a single amount: 9,999,999,999,999.99. Sums of bounded
// amounts still go through Add so long entries cannot wrap.
const MaxAmount Money = 999_999_999_999_999

// InRange reports whether |m| <= MaxAmount.
func (m Money) InRange() bool {
	return m >= -MaxAmount && m <= MaxAmount
}

// Add returns m+o. ok is false when the sum leaves the int64 range.
func (m Money) Add(o Money) (sum Money, ok bool) {
	sum = m + o
	if (o > 0 && sum < m) || (o < 0 && sum > m) {
		return 0, false
	}
	return sum, true
}

// Sub returns m-o. ok is false when the difference leaves the int64 range.
func (m Money) Sub(o Money) (diff Money, ok bool) {
	diff = m - o
	if (o > 0 && diff > m) || (o < 0 && diff < m) {
		return 0, false
	}
	return diff, true
}

// MoneyFromDecimal converts a decimal amount into minor units. Amounts with
// more precision than MoneyScale, or beyond MaxAmount, are rejected rather
// than rounded or wrapped.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Shift(MoneyScale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), MoneyScale)
	}
	if !shifted.BigInt().IsInt64() || !Money(shifted.IntPart()).InRange() {
		return 0, fmt.Errorf("amount %s is out of range, the limit is %s", d.String(), MaxAmount)
	}
	return Money(shifted.IntPart()), nil
}

// MustMoney parses a decimal string and panics on failure. Meant for tests and
// static tables.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MoneyScale)
}

// String formats the amount with exactly MoneyScale decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(MoneyScale)
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}
