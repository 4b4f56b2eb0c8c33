package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// ListEntriesParams controls an entry listing.
type ListEntriesParams struct {
	Filter    domain.EntryFilter
	Limit     int
	NextToken string
}

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetEntry retrieves a specific entry by its ID.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries.
	ListEntries(ctx context.Context, params ListEntriesParams) (*domain.EntryPage, error)
}

// JournalValidatorSvc checks entries against the current rule settings
type JournalValidatorSvc interface {
	// ValidateJournalEntry runs the validator with the current settings and, when enabled,
	// the duplicate check. The result lists every violation found.
	ValidateJournalEntry(ctx context.Context, entry domain.JournalEntry) (domain.ValidationResult, error)

	// ValidateInput builds an entry from caller input and validates it without storing it.
	ValidateInput(ctx context.Context, in domain.EntryInput, actor string) (domain.ValidationResult, error)
}

// JournalWriterSvc defines lifecycle operations for journal entries
type JournalWriterSvc interface {
	// CreateEntry stores a new manual draft.
	CreateEntry(ctx context.Context, in domain.EntryInput, actor string) (*domain.JournalEntry, error)

	// UpdateEntry replaces the contents of a draft.
	UpdateEntry(ctx context.Context, entryID string, in domain.EntryInput, actor string) (*domain.JournalEntry, error)

	// PostEntry validates a draft, checks its period is open, and commits it.
	PostEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)

	// ApproveEntry validates a draft, checks its period is open, and commits it as approved.
	ApproveEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)

	// RejectEntry marks a draft rejected. Rejection is final.
	RejectEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)

	// ReverseEntry posts a new entry that undoes a committed one. date defaults to today.
	ReverseEntry(ctx context.Context, entryID string, date *time.Time, actor string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalValidatorSvc
	JournalWriterSvc
}
