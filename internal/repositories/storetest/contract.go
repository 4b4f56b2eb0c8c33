// Package storetest holds the behaviour every repository provider shares.
// Each store package runs ContractSuite from its own tests against a fresh,
// migrated provider.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// Stamp is the creation time used for every fixture.
var Stamp = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// ContractSuite exercises a RepositoryProvider through the repository ports.
type ContractSuite struct {
	suite.Suite

	// NewProvider returns an empty provider for one test.
	NewProvider func(t *testing.T) portsrepo.RepositoryProvider

	ctx  context.Context
	repo portsrepo.RepositoryProvider
}

func (s *ContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.NewProvider(s.T())
}

// Day parses a YYYY-MM-DD date.
func Day(v string) time.Time {
	t, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		panic(err)
	}
	return t
}

// Draft builds a balanced two-line cash sale.
func Draft(id string, date time.Time, desc string, amount domain.Money) domain.JournalEntry {
	e := domain.JournalEntry{
		EntryID:     id,
		Number:      "JE-" + id,
		Date:        date,
		Description: desc,
		Lines: []domain.JournalEntryLine{
			{LineID: id + "-1", AccountID: "1110", AccountName: "Cash", Debit: amount},
			{LineID: id + "-2", AccountID: "4100", AccountName: "Sales", Credit: amount},
		},
		Status:      domain.StatusDraft,
		Source:      domain.SourceManual,
		AuditFields: domain.NewAuditFields("tester", Stamp),
	}
	e.Recalculate()
	return e
}

func (s *ContractSuite) seedAccounts(cashBalance domain.Money) {
	n, err := s.repo.AccountRepo.SaveAccounts(s.ctx, []domain.Account{
		{AccountID: "1110", Number: "1110", Name: "Cash", AccountType: domain.Asset, IsActive: true, Balance: cashBalance, AuditFields: domain.NewAuditFields("t", Stamp)},
		{AccountID: "4100", Number: "4100", Name: "Sales", AccountType: domain.Revenue, IsActive: true, AuditFields: domain.NewAuditFields("t", Stamp)},
	})
	s.Require().NoError(err)
	s.Require().Equal(2, n)
}

func (s *ContractSuite) insertPeriod(id, start, end string) {
	p := domain.NewPeriod(id, domain.PeriodInput{Name: id, StartDate: Day(start), EndDate: Day(end)}, "t", Stamp)
	_, err := s.repo.PeriodRepo.MutatePeriods(s.ctx, func(cur []domain.AccountingPeriod) ([]domain.AccountingPeriod, error) {
		return domain.InsertPeriod(cur, p)
	})
	s.Require().NoError(err)
}

func (s *ContractSuite) closePeriod(id string) {
	_, err := s.repo.PeriodRepo.MutatePeriods(s.ctx, func(cur []domain.AccountingPeriod) ([]domain.AccountingPeriod, error) {
		next, _, err := domain.ClosePeriodIn(cur, id, "t", Stamp)
		return next, err
	})
	s.Require().NoError(err)
}

func (s *ContractSuite) balance(accountID string) domain.Money {
	a, err := s.repo.AccountRepo.FindAccountByID(s.ctx, accountID)
	s.Require().NoError(err)
	return a.Balance
}

func (s *ContractSuite) periodKind(err error) domain.ErrorKind {
	var perr *domain.PeriodError
	s.Require().True(errors.As(err, &perr), "want a period error, got %v", err)
	return perr.Kind
}

func (s *ContractSuite) TestAccounts() {
	s.seedAccounts(0)

	n, err := s.repo.AccountRepo.SaveAccounts(s.ctx, []domain.Account{{AccountID: "1110", Number: "1110", AccountType: domain.Asset, AuditFields: domain.NewAuditFields("t", Stamp)}})
	s.Require().NoError(err)
	s.Zero(n, "existing ids are skipped")

	err = s.repo.AccountRepo.SaveAccount(s.ctx, domain.Account{AccountID: "x", Number: "4100", AccountType: domain.Revenue, AuditFields: domain.NewAuditFields("t", Stamp)})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	cash, err := s.repo.AccountRepo.FindAccountByID(s.ctx, "1110")
	s.Require().NoError(err)
	s.Equal("Cash", cash.Name)
	s.True(cash.CreatedAt.Equal(Stamp))

	_, err = s.repo.AccountRepo.FindAccountByID(s.ctx, "nope")
	s.ErrorIs(err, apperrors.ErrNotFound)

	found, err := s.repo.AccountRepo.FindAccountsByIDs(s.ctx, []string{"1110", "nope"})
	s.Require().NoError(err)
	s.Len(found, 1)

	all, err := s.repo.AccountRepo.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("1110", all[0].Number)
}

func (s *ContractSuite) TestCommitEntryAppliesBalancesOnce() {
	s.seedAccounts(0)
	s.insertPeriod("fy24", "2024-01-01", "2024-12-31")

	e := Draft("e1", Day("2024-03-15"), "Cash sale", 2500)
	s.Require().NoError(s.repo.JournalRepo.SaveEntry(s.ctx, e))

	e.Status = domain.StatusPosted
	changes := map[string]domain.Money{"1110": 2500, "4100": 2500}
	s.Require().NoError(s.repo.JournalRepo.CommitEntry(s.ctx, e, changes))

	stored, err := s.repo.JournalRepo.FindEntryByID(s.ctx, "e1")
	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, stored.Status)
	s.Require().Len(stored.Lines, 2)
	s.Equal("e1-1", stored.Lines[0].LineID)
	s.Equal(domain.Money(2500), stored.TotalDebit)
	s.True(stored.Date.Equal(Day("2024-03-15")))

	err = s.repo.JournalRepo.CommitEntry(s.ctx, e, changes)
	var entryErr *domain.EntryError
	s.Require().True(errors.As(err, &entryErr))
	s.Equal(domain.KindInvalidTransition, entryErr.Kind)
	s.Equal(domain.Money(2500), s.balance("1110"), "second commit must not apply balances")
}

func (s *ContractSuite) TestCommitEntryRequiresOpenPeriod() {
	s.seedAccounts(0)
	e := Draft("e1", Day("2024-03-15"), "Cash sale", 100)
	e.Status = domain.StatusPosted
	changes := map[string]domain.Money{"1110": 100, "4100": 100}

	err := s.repo.JournalRepo.CommitEntry(s.ctx, e, changes)
	s.Equal(domain.KindNoOpenPeriod, s.periodKind(err))

	s.insertPeriod("q1", "2024-01-01", "2024-03-31")
	s.closePeriod("q1")
	err = s.repo.JournalRepo.CommitEntry(s.ctx, e, changes)
	s.Equal(domain.KindPeriodClosed, s.periodKind(err))

	_, err = s.repo.JournalRepo.FindEntryByID(s.ctx, "e1")
	s.ErrorIs(err, apperrors.ErrNotFound, "nothing is stored")
	s.Zero(s.balance("1110"))
}

func (s *ContractSuite) TestCommitEntryRefusesBalanceOverflow() {
	s.seedAccounts(math.MaxInt64 - 10)
	s.insertPeriod("fy24", "2024-01-01", "2024-12-31")

	e := Draft("e1", Day("2024-03-15"), "Cash sale", 100)
	e.Status = domain.StatusPosted
	err := s.repo.JournalRepo.CommitEntry(s.ctx, e, map[string]domain.Money{"1110": 100, "4100": 100})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.repo.JournalRepo.FindEntryByID(s.ctx, "e1")
	s.ErrorIs(err, apperrors.ErrNotFound, "the commit is rolled back")
	s.Equal(domain.Money(math.MaxInt64-10), s.balance("1110"))
	s.Zero(s.balance("4100"))
}

func (s *ContractSuite) TestCommitEntryRollsBackOnMissingAccount() {
	s.seedAccounts(0)
	s.insertPeriod("fy24", "2024-01-01", "2024-12-31")

	e := Draft("e1", Day("2024-03-15"), "sale", 100)
	e.Status = domain.StatusPosted
	err := s.repo.JournalRepo.CommitEntry(s.ctx, e, map[string]domain.Money{"1110": 100, "9999": 100})
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.repo.JournalRepo.FindEntryByID(s.ctx, "e1")
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Zero(s.balance("1110"))
}

func (s *ContractSuite) TestReversalIsUniquePerOriginal() {
	s.seedAccounts(0)
	s.insertPeriod("fy24", "2024-01-01", "2024-12-31")
	s.Require().NoError(s.repo.JournalRepo.SaveEntry(s.ctx, Draft("orig", Day("2024-03-01"), "sale", 10)))

	r1 := Draft("r1", Day("2024-03-02"), "reversal", 10)
	r1.ReversalOf = "orig"
	r1.Status = domain.StatusPosted
	s.Require().NoError(s.repo.JournalRepo.CommitEntry(s.ctx, r1, map[string]domain.Money{"1110": -10, "4100": -10}))

	r2 := Draft("r2", Day("2024-03-02"), "reversal", 10)
	r2.ReversalOf = "orig"
	r2.Status = domain.StatusPosted
	s.ErrorIs(s.repo.JournalRepo.CommitEntry(s.ctx, r2, map[string]domain.Money{"1110": -10, "4100": -10}), apperrors.ErrDuplicate)

	found, err := s.repo.JournalRepo.FindReversalOf(s.ctx, "orig")
	s.Require().NoError(err)
	s.Equal("r1", found.EntryID)
	s.Equal(domain.Money(-10), s.balance("1110"))

	_, err = s.repo.JournalRepo.FindReversalOf(s.ctx, "r1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ContractSuite) TestUpdateEntryRequiresDraft() {
	s.seedAccounts(0)
	e := Draft("e1", Day("2024-03-15"), "sale", 100)
	s.Require().NoError(s.repo.JournalRepo.SaveEntry(s.ctx, e))

	e.Description = "corrected sale"
	e.Lines = e.Lines[:1]
	s.Require().NoError(s.repo.JournalRepo.UpdateEntry(s.ctx, e))
	stored, err := s.repo.JournalRepo.FindEntryByID(s.ctx, "e1")
	s.Require().NoError(err)
	s.Equal("corrected sale", stored.Description)
	s.Len(stored.Lines, 1)

	e.Status = domain.StatusRejected
	s.Require().NoError(s.repo.JournalRepo.UpdateEntry(s.ctx, e))
	var entryErr *domain.EntryError
	s.True(errors.As(s.repo.JournalRepo.UpdateEntry(s.ctx, e), &entryErr))

	s.ErrorIs(s.repo.JournalRepo.UpdateEntry(s.ctx, Draft("ghost", Day("2024-03-15"), "x", 1)), apperrors.ErrNotFound)
}

func (s *ContractSuite) TestFindDuplicatesMatchesCommittedEntriesOnly() {
	s.seedAccounts(0)
	s.insertPeriod("fy24", "2024-01-01", "2024-12-31")

	a := Draft("a", Day("2024-03-01"), "Office rent", 1000)
	s.Require().NoError(s.repo.JournalRepo.SaveEntry(s.ctx, a))
	s.Require().NoError(s.repo.JournalRepo.SaveEntry(s.ctx, Draft("b", Day("2024-03-01"), "office rent", 1000)))

	dups, err := s.repo.JournalRepo.FindDuplicates(s.ctx, Day("2024-03-01"), "office rent", 1000, "")
	s.Require().NoError(err)
	s.Empty(dups, "drafts never block each other")

	a.Status = domain.StatusPosted
	s.Require().NoError(s.repo.JournalRepo.CommitEntry(s.ctx, a, map[string]domain.Money{"1110": 1000, "4100": 1000}))

	dups, err = s.repo.JournalRepo.FindDuplicates(s.ctx, Day("2024-03-01"), "  office RENT ", 1000, "b")
	s.Require().NoError(err)
	s.Require().Len(dups, 1)
	s.Equal("a", dups[0].EntryID)

	dups, err = s.repo.JournalRepo.FindDuplicates(s.ctx, Day("2024-03-01"), "office rent", 1000, "a")
	s.Require().NoError(err)
	s.Empty(dups, "the entry itself is excluded")

	dups, err = s.repo.JournalRepo.FindDuplicates(s.ctx, Day("2024-03-01"), "office rent", 999, "")
	s.Require().NoError(err)
	s.Empty(dups)
}

func (s *ContractSuite) TestListEntriesPaginates() {
	s.seedAccounts(0)
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.repo.JournalRepo.SaveEntry(s.ctx, Draft(fmt.Sprintf("e%d", i), Day("2024-01-01").AddDate(0, 0, i), "sale", 100)))
	}

	page1, next, err := s.repo.JournalRepo.ListEntries(s.ctx, domain.EntryFilter{}, 2, "")
	s.Require().NoError(err)
	s.Require().Len(page1, 2)
	s.Equal("e4", page1[0].EntryID)
	s.Equal("e3", page1[1].EntryID)
	s.Require().NotEmpty(next)

	page2, next, err := s.repo.JournalRepo.ListEntries(s.ctx, domain.EntryFilter{}, 2, next)
	s.Require().NoError(err)
	s.Require().Len(page2, 2)
	s.Equal("e2", page2[0].EntryID)

	page3, next, err := s.repo.JournalRepo.ListEntries(s.ctx, domain.EntryFilter{}, 2, next)
	s.Require().NoError(err)
	s.Require().Len(page3, 1)
	s.Equal("e0", page3[0].EntryID)
	s.Empty(next)

	from, to := Day("2024-01-02"), Day("2024-01-03")
	filtered, _, err := s.repo.JournalRepo.ListEntries(s.ctx, domain.EntryFilter{From: &from, To: &to}, 10, "")
	s.Require().NoError(err)
	s.Len(filtered, 2)

	_, _, err = s.repo.JournalRepo.ListEntries(s.ctx, domain.EntryFilter{}, 2, "%%%")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ContractSuite) TestNextEntryNumber() {
	for want := int64(1); want <= 3; want++ {
		got, err := s.repo.JournalRepo.NextEntryNumber(s.ctx, "JE")
		s.Require().NoError(err)
		s.Equal(want, got)
	}
	got, err := s.repo.JournalRepo.NextEntryNumber(s.ctx, "AUTO")
	s.Require().NoError(err)
	s.Equal(int64(1), got)
}

func (s *ContractSuite) TestMutatePeriods() {
	s.insertPeriod("q2", "2024-04-01", "2024-06-30")
	s.insertPeriod("q1", "2024-01-01", "2024-03-31")
	s.closePeriod("q1")

	stored, err := s.repo.PeriodRepo.FindPeriodByID(s.ctx, "q1")
	s.Require().NoError(err)
	s.True(stored.IsClosed)
	s.Require().NotNil(stored.ClosedAt)
	s.True(stored.ClosedAt.Equal(Stamp))
	s.True(stored.EndDate.Equal(Day("2024-03-31")))

	boom := errors.New("boom")
	_, err = s.repo.PeriodRepo.MutatePeriods(s.ctx, func(cur []domain.AccountingPeriod) ([]domain.AccountingPeriod, error) {
		cur[0].Name = "mutated snapshot"
		return nil, boom
	})
	s.ErrorIs(err, boom)

	periods, err := s.repo.PeriodRepo.ListPeriods(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(periods, 2)
	s.Equal("q1", periods[0].PeriodID)
	s.Equal("q1", periods[0].Name, "a failed mutation leaves the stored collection alone")

	_, err = s.repo.PeriodRepo.MutatePeriods(s.ctx, func(cur []domain.AccountingPeriod) ([]domain.AccountingPeriod, error) {
		return domain.RemovePeriod(cur, "q2")
	})
	s.Require().NoError(err)
	_, err = s.repo.PeriodRepo.FindPeriodByID(s.ctx, "q2")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ContractSuite) TestRuleSettingsRoundTrip() {
	_, err := s.repo.SettingsRepo.LoadRuleSettings(s.ctx)
	s.ErrorIs(err, apperrors.ErrNotFound)

	ceiling := domain.Money(50000)
	want := domain.DefaultRuleSettings()
	want.RequireApproval = true
	want.MaxEntryAmount = &ceiling
	s.Require().NoError(s.repo.SettingsRepo.SaveRuleSettings(s.ctx, want, "admin"))

	got, err := s.repo.SettingsRepo.LoadRuleSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(want, *got)

	want.MaxEntryAmount = nil
	s.Require().NoError(s.repo.SettingsRepo.SaveRuleSettings(s.ctx, want, "admin"))
	got, err = s.repo.SettingsRepo.LoadRuleSettings(s.ctx)
	s.Require().NoError(err)
	s.Nil(got.MaxEntryAmount)
}
