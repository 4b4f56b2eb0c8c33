package models

import "time"

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID     string    `db:"entry_id"`
	Number      string    `db:"number"`
	EntryDate   time.Time `db:"entry_date"`
	Description string    `db:"description"`
	TotalDebit  int64     `db:"total_debit"`
	TotalCredit int64     `db:"total_credit"`
	Status      string    `db:"status"`
	Source      string    `db:"source"`
	EventKind   *string   `db:"event_kind"`  // Nullable
	ReversalOf  *string   `db:"reversal_of"` // Nullable, unique
	AuditFields
}

// JournalLine is a row of the journal_lines table. LineNo keeps the order the
// lines were entered in.
type JournalLine struct {
	LineID      string `db:"line_id"`
	EntryID     string `db:"entry_id"`
	LineNo      int    `db:"line_no"`
	AccountID   string `db:"account_id"`
	AccountName string `db:"account_name"`
	Description string `db:"description"`
	Debit       int64  `db:"debit"`
	Credit      int64  `db:"credit"`
}
