package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
)

// journalService provides journal entry validation and lifecycle operations.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	settingsSvc portssvc.SettingsSvcFacade
	periodSvc   portssvc.PeriodReaderSvc
}

// NewJournalService creates a new JournalService.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	settingsSvc portssvc.SettingsSvcFacade,
	periodSvc portssvc.PeriodReaderSvc,
	options ...ServiceOption,
) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService: newBaseService(options...),
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		settingsSvc: settingsSvc,
		periodSvc:   periodSvc,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func (s *journalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &domain.EntryError{Kind: domain.KindNotFound, EntryID: entryID, Detail: "journal entry not found"}
		}
		s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to find journal entry: %w", err)
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, params portssvc.ListEntriesParams) (*domain.EntryPage, error) {
	limit := pagination.ClampLimit(params.Limit)
	if params.NextToken != "" {
		if _, err := pagination.DecodeToken(params.NextToken); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}
	entries, next, err := s.journalRepo.ListEntries(ctx, params.Filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return &domain.EntryPage{Entries: entries, NextToken: next}, nil
}

// ValidateJournalEntry runs the pure validator with the current settings, then the
// checks that need the store: account existence and duplicates. Generated
// entries and reversals carry their own reference and skip the duplicate check.
func (s *journalService) ValidateJournalEntry(ctx context.Context, entry domain.JournalEntry) (domain.ValidationResult, error) {
	settings := s.settingsSvc.CurrentRuleSettings(ctx)
	res := domain.ValidateJournalEntry(entry, settings)

	if err := s.checkAccounts(ctx, entry.Lines, &res); err != nil {
		return domain.ValidationResult{}, err
	}

	if settings.CheckDuplicateEntries && keyedByHand(entry) && strings.TrimSpace(entry.Description) != "" {
		dups, err := s.journalRepo.FindDuplicates(ctx, entry.Date, entry.Description, entry.TotalDebit, entry.EntryID)
		if err != nil {
			s.LogError(ctx, err, "Failed to check for duplicate entries")
			return domain.ValidationResult{}, fmt.Errorf("failed to check for duplicate entries: %w", err)
		}
		if len(dups) > 0 {
			res.Add(domain.ValidationError{
				Kind:    domain.KindDuplicate,
				Field:   "description",
				Message: fmt.Sprintf("an entry with the same date, description and amount already exists (%s)", dups[0].Number),
			})
		}
	}
	return res, nil
}

func keyedByHand(entry domain.JournalEntry) bool {
	return entry.Source != domain.SourceAutomatic && entry.Source != domain.SourceReversal
}

func (s *journalService) ValidateInput(ctx context.Context, in domain.EntryInput, actor string) (res domain.ValidationResult, err error) {
	entry, err := s.buildEntry(ctx, "", "", in, actor)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	res, err = s.ValidateJournalEntry(ctx, entry)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	s.Audit(ctx, domain.OpValidateEntry, "", actor, res.Err())
	return res, nil
}

func (s *journalService) CreateEntry(ctx context.Context, in domain.EntryInput, actor string) (entry *domain.JournalEntry, err error) {
	defer func() { s.auditEntry(ctx, domain.OpCreateEntry, entry, "", actor, err) }()

	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: journal entry needs at least one line", apperrors.ErrValidation)
	}
	number, err := s.nextNumber(ctx, domain.ManualEntryPrefix)
	if err != nil {
		return nil, err
	}
	built, err := s.buildEntry(ctx, s.newID(), number, in, actor)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.SaveEntry(ctx, built); err != nil {
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	s.LogInfo(ctx, "Journal entry created", slog.String("entry_id", built.EntryID), slog.String("number", built.Number))
	return &built, nil
}

func (s *journalService) UpdateEntry(ctx context.Context, entryID string, in domain.EntryInput, actor string) (entry *domain.JournalEntry, err error) {
	defer func() { s.auditEntry(ctx, domain.OpUpdateEntry, entry, entryID, actor, err) }()

	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: journal entry needs at least one line", apperrors.ErrValidation)
	}
	existing, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if existing.Status != domain.StatusDraft {
		return nil, &domain.EntryError{
			Kind:    domain.KindInvalidTransition,
			EntryID: entryID,
			Detail:  fmt.Sprintf("only drafts can be edited, entry is %s", existing.Status),
		}
	}

	rebuilt, err := s.buildEntry(ctx, existing.EntryID, existing.Number, in, actor)
	if err != nil {
		return nil, err
	}
	rebuilt.Source = existing.Source
	rebuilt.EventKind = existing.EventKind
	rebuilt.ReversalOf = existing.ReversalOf
	rebuilt.CreatedAt = existing.CreatedAt
	rebuilt.CreatedBy = existing.CreatedBy
	rebuilt.Touch(actor, s.now())

	if err := s.journalRepo.UpdateEntry(ctx, rebuilt); err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	return &rebuilt, nil
}

func (s *journalService) PostEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	return s.commit(ctx, domain.OpPostEntry, entryID, domain.StatusPosted, actor)
}

func (s *journalService) ApproveEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	return s.commit(ctx, domain.OpApproveEntry, entryID, domain.StatusApproved, actor)
}

func (s *journalService) RejectEntry(ctx context.Context, entryID string, actor string) (entry *domain.JournalEntry, err error) {
	defer func() { s.auditEntry(ctx, domain.OpRejectEntry, entry, entryID, actor, err) }()

	existing, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanTransitionTo(domain.StatusRejected) {
		return nil, invalidTransition(existing, domain.StatusRejected)
	}
	existing.Status = domain.StatusRejected
	existing.Touch(actor, s.now())
	if err := s.journalRepo.UpdateEntry(ctx, *existing); err != nil {
		return nil, fmt.Errorf("failed to reject journal entry: %w", err)
	}
	s.LogInfo(ctx, "Journal entry rejected", slog.String("entry_id", entryID))
	return existing, nil
}

// ReverseEntry books the mirror image of a committed entry as a new posted
// entry. The original is never modified and can be reversed only once.
// Without an explicit date the reversal is dated today, so it lands in the
// current period even when the original's period is closed.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, date *time.Time, actor string) (entry *domain.JournalEntry, err error) {
	defer func() { s.auditEntry(ctx, domain.OpReverseEntry, entry, entryID, actor, err) }()

	original, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !original.IsCommitted() {
		return nil, &domain.EntryError{
			Kind:    domain.KindInvalidTransition,
			EntryID: entryID,
			Detail:  fmt.Sprintf("only posted or approved entries can be reversed, entry is %s", original.Status),
		}
	}

	switch existing, err := s.journalRepo.FindReversalOf(ctx, entryID); {
	case err == nil:
		return nil, alreadyReversed(entryID, existing.Number)
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to look up reversal", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to look up reversal: %w", err)
	}

	reversalDate := s.now()
	if date != nil {
		reversalDate = *date
	}
	number, err := s.nextNumber(ctx, domain.ReversalEntryPrefix)
	if err != nil {
		return nil, err
	}
	now := s.now()
	reversal := original.Reversal(s.newID(), number, reversalDate, s.newID)
	reversal.AuditFields = domain.NewAuditFields(actor, now)
	reversal.Status = domain.StatusPosted

	if err := s.checkCommittable(ctx, reversal); err != nil {
		return nil, err
	}
	changes, err := s.balanceChanges(ctx, reversal.Lines)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.CommitEntry(ctx, reversal, changes); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, alreadyReversed(entryID, "")
		}
		return nil, fmt.Errorf("failed to commit reversal: %w", err)
	}
	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_id", reversal.EntryID))
	return &reversal, nil
}

// commit moves a draft to posted or approved. Posting is refused while the
// approval policy is on; approval is always allowed.
func (s *journalService) commit(ctx context.Context, op, entryID string, target domain.JournalStatus, actor string) (entry *domain.JournalEntry, err error) {
	defer func() { s.auditEntry(ctx, op, entry, entryID, actor, err) }()

	existing, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanTransitionTo(target) {
		return nil, invalidTransition(existing, target)
	}
	if target == domain.StatusPosted && s.settingsSvc.CurrentRuleSettings(ctx).RequireApproval {
		return nil, &domain.EntryError{
			Kind:    domain.KindApprovalRequired,
			EntryID: entryID,
			Detail:  "entries must be approved before they affect balances",
		}
	}

	if err := s.checkCommittable(ctx, *existing); err != nil {
		return nil, err
	}
	changes, err := s.balanceChanges(ctx, existing.Lines)
	if err != nil {
		return nil, err
	}

	committed := *existing
	committed.Status = target
	committed.Touch(actor, s.now())
	if err := s.journalRepo.CommitEntry(ctx, committed, changes); err != nil {
		return nil, fmt.Errorf("failed to commit journal entry: %w", err)
	}
	s.LogInfo(ctx, "Journal entry committed",
		slog.String("entry_id", entryID),
		slog.String("status", string(target)),
		slog.String("total", committed.TotalDebit.String()))
	return &committed, nil
}

// checkCommittable validates entry and confirms its date is in an open period.
// The store repeats the period check inside the commit; this one fails fast
// before balances are computed.
func (s *journalService) checkCommittable(ctx context.Context, entry domain.JournalEntry) error {
	res, err := s.ValidateJournalEntry(ctx, entry)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}
	return s.periodSvc.EnsureOpen(ctx, entry.Date)
}

func (s *journalService) balanceChanges(ctx context.Context, lines []domain.JournalEntryLine) (map[string]domain.Money, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, lineAccountIDs(lines))
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for balance update")
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	types := make(map[string]domain.AccountType, len(accounts))
	for id, a := range accounts {
		types[id] = a.AccountType
	}
	changes, err := accounting.BalanceChanges(lines, types)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return changes, nil
}

// checkAccounts adds an InvalidLine violation for every line whose account is
// unknown or inactive.
func (s *journalService) checkAccounts(ctx context.Context, lines []domain.JournalEntryLine, res *domain.ValidationResult) error {
	ids := lineAccountIDs(lines)
	if len(ids) == 0 {
		return nil
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for validation")
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	for i, l := range lines {
		if strings.TrimSpace(l.AccountID) == "" {
			continue
		}
		idx := i
		acc, ok := accounts[l.AccountID]
		switch {
		case !ok:
			res.Add(domain.ValidationError{
				Kind:    domain.KindInvalidLine,
				Field:   fmt.Sprintf("lines[%d].accountID", i),
				Line:    &idx,
				Message: fmt.Sprintf("account %s does not exist", l.AccountID),
			})
		case !acc.IsActive:
			res.Add(domain.ValidationError{
				Kind:    domain.KindInvalidLine,
				Field:   fmt.Sprintf("lines[%d].accountID", i),
				Line:    &idx,
				Message: fmt.Sprintf("account %s is inactive", l.AccountID),
			})
		}
	}
	return nil
}

func (s *journalService) buildEntry(ctx context.Context, entryID, number string, in domain.EntryInput, actor string) (domain.JournalEntry, error) {
	ids := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.AccountID != "" {
			ids = append(ids, l.AccountID)
		}
	}
	accounts := map[string]domain.Account{}
	if len(ids) > 0 {
		found, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
		if err != nil {
			s.LogError(ctx, err, "Failed to load accounts for entry")
			return domain.JournalEntry{}, fmt.Errorf("failed to load accounts: %w", err)
		}
		accounts = found
	}
	lookup := func(id string) (domain.Account, bool) {
		a, ok := accounts[id]
		return a, ok
	}

	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	entry := domain.JournalEntry{
		EntryID:     entryID,
		Number:      number,
		Date:        domain.DateOf(date),
		Description: strings.TrimSpace(in.Description),
		Lines:       domain.BuildLines(in.Lines, s.newID, lookup),
		Status:      domain.StatusDraft,
		Source:      domain.SourceManual,
		AuditFields: domain.NewAuditFields(actor, now),
	}
	entry.Recalculate()
	return entry, nil
}

func (s *journalService) nextNumber(ctx context.Context, prefix string) (string, error) {
	seq, err := s.journalRepo.NextEntryNumber(ctx, prefix)
	if err != nil {
		s.LogError(ctx, err, "Failed to allocate entry number", slog.String("prefix", prefix))
		return "", fmt.Errorf("failed to allocate entry number: %w", err)
	}
	return domain.FormatEntryNumber(prefix, seq), nil
}

func (s *journalService) auditEntry(ctx context.Context, op string, entry *domain.JournalEntry, fallbackID, actor string, err error) {
	id := fallbackID
	if entry != nil {
		id = entry.EntryID
	}
	if err != nil {
		s.LogFailure(ctx, err, "Journal operation failed", slog.String("operation", op), slog.String("entry_id", id))
	}
	s.Audit(ctx, op, id, actor, err)
}

func lineAccountIDs(lines []domain.JournalEntryLine) []string {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.AccountID == "" || seen[l.AccountID] {
			continue
		}
		seen[l.AccountID] = true
		ids = append(ids, l.AccountID)
	}
	return ids
}

func invalidTransition(e *domain.JournalEntry, target domain.JournalStatus) error {
	return &domain.EntryError{
		Kind:    domain.KindInvalidTransition,
		EntryID: e.EntryID,
		Detail:  fmt.Sprintf("cannot move from %s to %s", e.Status, target),
	}
}

func alreadyReversed(entryID, reversalNumber string) error {
	detail := "entry has already been reversed"
	if reversalNumber != "" {
		detail += " by " + reversalNumber
	}
	return &domain.EntryError{Kind: domain.KindAlreadyReversed, EntryID: entryID, Detail: detail}
}
