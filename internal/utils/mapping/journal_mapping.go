package mapping

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its entry row and line rows.
func ToModelJournalEntry(d domain.JournalEntry) (models.JournalEntry, []models.JournalLine) {
	entry := models.JournalEntry{
		EntryID:     d.EntryID,
		Number:      d.Number,
		EntryDate:   domain.DateOf(d.Date),
		Description: d.Description,
		TotalDebit:  int64(d.TotalDebit),
		TotalCredit: int64(d.TotalCredit),
		Status:      string(d.Status),
		Source:      string(d.Source),
		EventKind:   optional(string(d.EventKind)),
		ReversalOf:  optional(d.ReversalOf),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	lines := make([]models.JournalLine, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = models.JournalLine{
			LineID:      l.LineID,
			EntryID:     d.EntryID,
			LineNo:      i,
			AccountID:   l.AccountID,
			AccountName: l.AccountName,
			Description: l.Description,
			Debit:       int64(l.Debit),
			Credit:      int64(l.Credit),
		}
	}
	return entry, lines
}

// ToDomainJournalEntry converts an entry row and its lines, ordered by
// LineNo, to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	out := domain.JournalEntry{
		EntryID:     m.EntryID,
		Number:      m.Number,
		Date:        domain.DateOf(m.EntryDate),
		Description: m.Description,
		TotalDebit:  domain.Money(m.TotalDebit),
		TotalCredit: domain.Money(m.TotalCredit),
		Status:      domain.JournalStatus(m.Status),
		Source:      domain.EntrySource(m.Source),
		EventKind:   domain.EventKind(deref(m.EventKind)),
		ReversalOf:  deref(m.ReversalOf),
		Lines:       make([]domain.JournalEntryLine, len(lines)),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	for i, l := range lines {
		out.Lines[i] = domain.JournalEntryLine{
			LineID:      l.LineID,
			AccountID:   l.AccountID,
			AccountName: l.AccountName,
			Description: l.Description,
			Debit:       domain.Money(l.Debit),
			Credit:      domain.Money(l.Credit),
		}
	}
	return out
}
