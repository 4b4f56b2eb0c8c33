// Package memory keeps every aggregate in process memory behind one mutex.
// It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"sync"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// Store implements every repository port.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]domain.Account
	entries   map[string]domain.JournalEntry
	reversals map[string]string // original entry id -> reversal entry id
	sequences map[string]int64
	periods   []domain.AccountingPeriod
	settings  *domain.RuleSettings
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		entries:   make(map[string]domain.JournalEntry),
		reversals: make(map[string]string),
		sequences: make(map[string]int64),
	}
}

// Provider exposes the store through the repository ports.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  s,
		JournalRepo:  s,
		PeriodRepo:   s,
		SettingsRepo: s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.PeriodRepositoryFacade  = (*Store)(nil)
	_ portsrepo.SettingsRepository      = (*Store)(nil)
)

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	lines := make([]domain.JournalEntryLine, len(e.Lines))
	copy(lines, e.Lines)
	e.Lines = lines
	return e
}
