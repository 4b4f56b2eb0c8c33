package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries returns entries matching filter, newest date first, using token-based pagination.
	// It returns the entries, a token for the next page (empty on the last page), and an error.
	ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken string) ([]domain.JournalEntry, string, error)

	// FindDuplicates returns posted or approved entries other than excludeID with the same date,
	// the same description ignoring case and surrounding space, and the same total debit.
	FindDuplicates(ctx context.Context, date time.Time, description string, totalDebit domain.Money, excludeID string) ([]domain.JournalEntry, error)

	// FindReversalOf returns the entry reversing entryID, or apperrors.ErrNotFound.
	FindReversalOf(ctx context.Context, entryID string) (*domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveEntry persists a new draft entry and its lines. A second reversal of the same
	// entry yields apperrors.ErrDuplicate.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateEntry replaces a draft's fields and lines, or records a status change that
	// does not touch balances. The stored entry must still be a draft.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry) error

	// CommitEntry stores entry in its committed status and applies balanceChanges to the
	// accounts in the same atomic step. An entry that is already stored must still be a
	// draft; one that is not stored yet is inserted with its lines. The entry's date must
	// fall in an open period, checked in the same step against concurrent period changes,
	// and no balance may overflow.
	CommitEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]domain.Money) error
}

// EntryNumberer hands out per-prefix sequence values for entry numbers.
type EntryNumberer interface {
	NextEntryNumber(ctx context.Context, prefix string) (int64, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	EntryNumberer
}
