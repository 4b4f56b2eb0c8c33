package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
)

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("journal entry %s: %w", entryID, apperrors.ErrNotFound)
	}
	e = cloneEntry(e)
	return &e, nil
}

func (s *Store) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken string) ([]domain.JournalEntry, string, error) {
	var cursor *pagination.Cursor
	if nextToken != "" {
		c, err := pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	s.mu.RLock()
	matched := make([]domain.JournalEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if !filter.Matches(e) {
			continue
		}
		if cursor != nil && !cursor.After(e.Date, e.CreatedAt, e.EntryID) {
			continue
		}
		matched = append(matched, cloneEntry(e))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.EntryID > b.EntryID
	})

	if limit <= 0 || len(matched) <= limit {
		return matched, "", nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	return page, pagination.EncodeToken(pagination.Cursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.EntryID}), nil
}

func (s *Store) FindDuplicates(ctx context.Context, date time.Time, description string, totalDebit domain.Money, excludeID string) ([]domain.JournalEntry, error) {
	want := strings.ToLower(strings.TrimSpace(description))
	day := domain.DateOf(date)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.JournalEntry
	for _, e := range s.entries {
		if e.EntryID == excludeID || !e.IsCommitted() {
			continue
		}
		if !domain.DateOf(e.Date).Equal(day) || e.TotalDebit != totalDebit {
			continue
		}
		if strings.ToLower(strings.TrimSpace(e.Description)) == want {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) FindReversalOf(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.reversals[entryID]
	if !ok {
		return nil, fmt.Errorf("reversal of %s: %w", entryID, apperrors.ErrNotFound)
	}
	e := cloneEntry(s.entries[id])
	return &e, nil
}

func (s *Store) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEntry(entry)
}

func (s *Store) insertEntry(entry domain.JournalEntry) error {
	if _, exists := s.entries[entry.EntryID]; exists {
		return fmt.Errorf("journal entry %s: %w", entry.EntryID, apperrors.ErrDuplicate)
	}
	if entry.ReversalOf != "" {
		if _, exists := s.reversals[entry.ReversalOf]; exists {
			return fmt.Errorf("reversal of %s: %w", entry.ReversalOf, apperrors.ErrDuplicate)
		}
		s.reversals[entry.ReversalOf] = entry.EntryID
	}
	s.entries[entry.EntryID] = cloneEntry(entry)
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraft(entry.EntryID); err != nil {
		return err
	}
	s.entries[entry.EntryID] = cloneEntry(entry)
	return nil
}

// CommitEntry checks the entry's period and applies balances under the write
// lock, so a period closed concurrently is seen before anything changes.
func (s *Store) CommitEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]domain.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := domain.EnsureOpenIn(s.periods, entry.Date); err != nil {
		return err
	}

	updated := make(map[string]domain.Account, len(balanceChanges))
	for id, delta := range balanceChanges {
		a, ok := s.accounts[id]
		if !ok {
			return fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
		balance, err := accounting.ApplyBalanceChange(id, a.Balance, delta)
		if err != nil {
			return err
		}
		a.Balance = balance
		a.Touch(entry.LastUpdatedBy, entry.LastUpdatedAt)
		updated[id] = a
	}

	if _, exists := s.entries[entry.EntryID]; exists {
		if err := s.requireDraft(entry.EntryID); err != nil {
			return err
		}
		s.entries[entry.EntryID] = cloneEntry(entry)
	} else if err := s.insertEntry(entry); err != nil {
		return err
	}

	for id, a := range updated {
		s.accounts[id] = a
	}
	return nil
}

func (s *Store) requireDraft(entryID string) error {
	current, ok := s.entries[entryID]
	if !ok {
		return fmt.Errorf("journal entry %s: %w", entryID, apperrors.ErrNotFound)
	}
	if current.Status != domain.StatusDraft {
		return &domain.EntryError{
			Kind:    domain.KindInvalidTransition,
			EntryID: entryID,
			Detail:  fmt.Sprintf("entry is %s, not a draft", current.Status),
		}
	}
	return nil
}

func (s *Store) NextEntryNumber(ctx context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[prefix]++
	return s.sequences[prefix], nil
}
