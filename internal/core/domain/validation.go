package domain

import (
	"fmt"
	"strings"
)

// BalanceTolerance is the largest accepted |debit - credit| in minor units.
// Amounts are integers so the tolerance is exact.
const BalanceTolerance Money = 0

// ValidateJournalEntry checks entry against the structural invariants and the
// given settings. Every violation is collected; nothing is short-circuited.
//
// The amount range, balance, description, and ceiling checks always run. With
// EnforceValidation on, line shape is checked too: at least two lines, each
// line strictly one-sided with a positive amount. When backdating is not
// allowed, an entry dated before the day it was created is rejected.
// The function is pure: the same inputs always produce the same result.
func ValidateJournalEntry(entry JournalEntry, settings RuleSettings) ValidationResult {
	res := ValidationResult{IsValid: true, Errors: []ValidationError{}}

	for i, l := range entry.Lines {
		if !l.Debit.InRange() || !l.Credit.InRange() {
			idx := i
			res.Add(ValidationError{
				Kind:    KindExceedsMaximum,
				Field:   fmt.Sprintf("lines[%d]", i),
				Line:    &idx,
				Message: fmt.Sprintf("line amount exceeds the largest supported amount %s", MaxAmount),
			})
		}
	}

	debit, credit, summed := SumLines(entry.Lines)
	if !summed {
		res.Add(ValidationError{
			Kind:    KindExceedsMaximum,
			Field:   "lines",
			Message: "line totals overflow the supported amount range",
		})
	} else if diff, ok := debit.Sub(credit); !ok || diff > BalanceTolerance || diff < -BalanceTolerance {
		res.Add(ValidationError{
			Kind:    KindUnbalanced,
			Field:   "lines",
			Message: fmt.Sprintf("total debit %s does not equal total credit %s", debit, credit),
		})
	}

	if strings.TrimSpace(entry.Description) == "" {
		res.Add(ValidationError{
			Kind:    KindMissingDescription,
			Field:   "description",
			Message: "description is required",
		})
	}

	if summed && settings.MaxEntryAmount != nil && debit > *settings.MaxEntryAmount {
		res.Add(ValidationError{
			Kind:    KindExceedsMaximum,
			Field:   "totalDebit",
			Message: fmt.Sprintf("total debit %s exceeds maximum entry amount %s", debit, *settings.MaxEntryAmount),
		})
	}

	if settings.EnforceValidation {
		if len(entry.Lines) < 2 {
			res.Add(ValidationError{
				Kind:    KindTooFewLines,
				Field:   "lines",
				Message: fmt.Sprintf("entry needs at least two lines, got %d", len(entry.Lines)),
			})
		}
		for i, l := range entry.Lines {
			if msg := lineShapeProblem(l); msg != "" {
				idx := i
				res.Add(ValidationError{
					Kind:    KindInvalidLine,
					Field:   fmt.Sprintf("lines[%d]", i),
					Line:    &idx,
					Message: msg,
				})
			}
		}
	}

	if !settings.AllowBackdatedEntries && !entry.CreatedAt.IsZero() && !entry.Date.IsZero() &&
		DateOf(entry.Date).Before(DateOf(entry.CreatedAt)) {
		res.Add(ValidationError{
			Kind:  KindBackdated,
			Field: "date",
			Message: fmt.Sprintf("entry date %s is before creation date %s and backdating is disabled",
				DateOf(entry.Date).Format(DateLayout), DateOf(entry.CreatedAt).Format(DateLayout)),
		})
	}

	return res
}

func lineShapeProblem(l JournalEntryLine) string {
	switch {
	case l.Debit < 0 || l.Credit < 0:
		return "amounts must not be negative"
	case l.Debit != 0 && l.Credit != 0:
		return "line has both a debit and a credit"
	case l.Debit == 0 && l.Credit == 0:
		return "line has no amount"
	case strings.TrimSpace(l.AccountID) == "":
		return "line has no account"
	}
	return ""
}
