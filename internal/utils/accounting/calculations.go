package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// CalculateSignedAmount applies the correct sign to a line amount based on account type and side.
// This is used in both services and repositories to ensure consistent accounting logic.
func CalculateSignedAmount(line domain.JournalEntryLine, accountType domain.AccountType) (domain.Money, error) {
	isDebit := line.Debit != 0
	amount := line.Debit
	if !isDebit {
		amount = line.Credit
	}
	if !amount.InRange() {
		return 0, fmt.Errorf("amount %s on account ID %s is out of range", amount, line.AccountID)
	}

	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to ASSET/EXPENSE -> Negative (-)
	// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
	// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			amount = -amount
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			amount = -amount
		}
	default:
		return 0, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
	return amount, nil
}

// BalanceChanges sums the signed effect of every line per account. Lines that
// carry both a debit and a credit contribute each side separately.
func BalanceChanges(lines []domain.JournalEntryLine, accountTypes map[string]domain.AccountType) (map[string]domain.Money, error) {
	changes := make(map[string]domain.Money, len(lines))
	for _, l := range lines {
		accountType, ok := accountTypes[l.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", l.AccountID)
		}
		for _, side := range splitSides(l) {
			signed, err := CalculateSignedAmount(side, accountType)
			if err != nil {
				return nil, fmt.Errorf("error calculating signed amount for line %s: %w", l.LineID, err)
			}
			sum, ok := changes[l.AccountID].Add(signed)
			if !ok {
				return nil, fmt.Errorf("balance change for account ID %s overflows", l.AccountID)
			}
			changes[l.AccountID] = sum
		}
	}
	return changes, nil
}

func splitSides(l domain.JournalEntryLine) []domain.JournalEntryLine {
	if l.Debit != 0 && l.Credit != 0 {
		d, c := l, l
		d.Credit = 0
		c.Debit = 0
		return []domain.JournalEntryLine{d, c}
	}
	return []domain.JournalEntryLine{l}
}

// ApplyBalanceChange adds delta to balance. An overflowing result is a
// validation failure and leaves the stored balance untouched.
func ApplyBalanceChange(accountID string, balance, delta domain.Money) (domain.Money, error) {
	next, ok := balance.Add(delta)
	if !ok {
		return 0, apperrors.NewAppError(apperrors.ErrValidation,
			fmt.Sprintf("balance of account %s would overflow", accountID), nil)
	}
	return next, nil
}
