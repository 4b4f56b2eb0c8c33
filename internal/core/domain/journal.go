package domain

import (
	"fmt"
	"math"
	"time"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	StatusDraft    JournalStatus = "DRAFT"
	StatusPosted   JournalStatus = "POSTED"
	StatusApproved JournalStatus = "APPROVED"
	StatusRejected JournalStatus = "REJECTED"
)

// EntrySource records how an entry came into existence.
type EntrySource string

const (
	SourceManual    EntrySource = "MANUAL"
	SourceAutomatic EntrySource = "AUTOMATIC"
	SourceReversal  EntrySource = "REVERSAL"
)

// JournalEntryLine is one debit or credit leg of an entry. AccountName is a
// snapshot taken when the line was built and is not kept in sync.
type JournalEntryLine struct {
	LineID      string `json:"lineID"`
	AccountID   string `json:"accountID"`
	AccountName string `json:"accountName"`
	Description string `json:"description"`
	Debit       Money  `json:"debit"`
	Credit      Money  `json:"credit"`
}

// JournalEntry is a dated set of lines. Once an entry leaves DRAFT its totals
// balance; once POSTED or APPROVED it is never modified again.
type JournalEntry struct {
	EntryID     string             `json:"entryID"`
	Number      string             `json:"number"`
	Date        time.Time          `json:"date"`
	Description string             `json:"description"`
	Lines       []JournalEntryLine `json:"lines"`
	TotalDebit  Money              `json:"totalDebit"`
	TotalCredit Money              `json:"totalCredit"`
	Status      JournalStatus      `json:"status"`
	Source      EntrySource        `json:"source"`
	EventKind   EventKind          `json:"eventKind,omitempty"`
	ReversalOf  string             `json:"reversalOf,omitempty"`
	AuditFields
}

// SumLines sums debits and credits across lines. ok is false when either
// sum overflows.
func SumLines(lines []JournalEntryLine) (debit, credit Money, ok bool) {
	for _, l := range lines {
		if debit, ok = debit.Add(l.Debit); !ok {
			return 0, 0, false
		}
		if credit, ok = credit.Add(l.Credit); !ok {
			return 0, 0, false
		}
	}
	return debit, credit, true
}

// Totals sums debits and credits across lines, clamping a sum that overflows
// to the int64 bound it crossed. The validator uses SumLines and rejects such
// entries, so a clamped total is never committed.
func Totals(lines []JournalEntryLine) (debit, credit Money) {
	for _, l := range lines {
		debit = saturatingAdd(debit, l.Debit)
		credit = saturatingAdd(credit, l.Credit)
	}
	return debit, credit
}

func saturatingAdd(a, b Money) Money {
	if sum, ok := a.Add(b); ok {
		return sum
	}
	if b > 0 {
		return math.MaxInt64
	}
	return math.MinInt64
}

// Recalculate refreshes TotalDebit and TotalCredit from the lines.
func (e *JournalEntry) Recalculate() {
	e.TotalDebit, e.TotalCredit = Totals(e.Lines)
}

// IsCommitted reports whether the entry affects balances.
func (e JournalEntry) IsCommitted() bool {
	return e.Status == StatusPosted || e.Status == StatusApproved
}

// IsTerminal reports whether no further status change is allowed.
func (e JournalEntry) IsTerminal() bool {
	return e.Status != StatusDraft
}

// CanTransitionTo reports whether the status change is allowed. Only drafts
// move; every other status is final.
func (s JournalStatus) CanTransitionTo(next JournalStatus) bool {
	if s != StatusDraft {
		return false
	}
	switch next {
	case StatusPosted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Reversal builds the correcting entry for a committed entry: same accounts,
// debit and credit swapped, dated on date.
func (e JournalEntry) Reversal(entryID, number string, date time.Time, lineID func() string) JournalEntry {
	lines := make([]JournalEntryLine, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalEntryLine{
			LineID:      lineID(),
			AccountID:   l.AccountID,
			AccountName: l.AccountName,
			Description: l.Description,
			Debit:       l.Credit,
			Credit:      l.Debit,
		}
	}
	r := JournalEntry{
		EntryID:     entryID,
		Number:      number,
		Date:        DateOf(date),
		Description: fmt.Sprintf("Reversal of %s: %s", e.Number, e.Description),
		Lines:       lines,
		Status:      StatusDraft,
		Source:      SourceReversal,
		ReversalOf:  e.EntryID,
	}
	r.Recalculate()
	return r
}

// EntryFilter narrows entry listings.
type EntryFilter struct {
	Status JournalStatus
	From   *time.Time
	To     *time.Time
}

// Matches reports whether e satisfies the filter.
func (f EntryFilter) Matches(e JournalEntry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	d := DateOf(e.Date)
	if f.From != nil && d.Before(DateOf(*f.From)) {
		return false
	}
	if f.To != nil && d.After(DateOf(*f.To)) {
		return false
	}
	return true
}

// FormatEntryNumber renders a sequence value with the given prefix.
func FormatEntryNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

const (
	ManualEntryPrefix    = "JE"
	AutomaticEntryPrefix = "AUTO"
	ReversalEntryPrefix  = "REV"
)

// EntryLineInput is one caller-supplied line.
type EntryLineInput struct {
	AccountID   string
	Description string
	Debit       Money
	Credit      Money
}

// EntryInput is a caller-supplied entry before ids, numbers, and name
// snapshots are assigned.
type EntryInput struct {
	Date        time.Time
	Description string
	Lines       []EntryLineInput
}

// BuildLines turns inputs into entry lines. lookup fills the account name
// snapshot when it resolves; a miss leaves the name empty.
func BuildLines(in []EntryLineInput, lineID func() string, lookup AccountLookup) []JournalEntryLine {
	lines := make([]JournalEntryLine, len(in))
	for i, l := range in {
		lines[i] = JournalEntryLine{
			LineID:      lineID(),
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
		if lookup != nil {
			if acc, ok := lookup(l.AccountID); ok {
				lines[i].AccountName = acc.Name
			}
		}
	}
	return lines
}

// EntryPage is one page of an entry listing.
type EntryPage struct {
	Entries   []JournalEntry
	NextToken string
}
