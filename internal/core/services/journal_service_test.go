package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

type JournalServiceTestSuite struct {
	suite.Suite
	h   *harness
	ctx context.Context
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.h = newHarness(suite.T(), domain.DefaultRuleSettings())
}

func (suite *JournalServiceTestSuite) svc() portssvc.JournalSvcFacade {
	return suite.h.container.Journal
}

func (suite *JournalServiceTestSuite) entryKind(err error) domain.ErrorKind {
	var entryErr *domain.EntryError
	suite.Require().True(errors.As(err, &entryErr), "expected *EntryError, got %v", err)
	return entryErr.Kind
}

func (suite *JournalServiceTestSuite) TestCreateEntry_Draft() {
	entry, err := suite.svc().CreateEntry(suite.ctx, saleInput("Till sale", 1000), actor)
	suite.Require().NoError(err)

	suite.Equal("JE-000001", entry.Number)
	suite.Equal(domain.StatusDraft, entry.Status)
	suite.Equal(domain.SourceManual, entry.Source)
	suite.Equal(domain.Money(1000), entry.TotalDebit)
	suite.Equal("Cash", entry.Lines[0].AccountName)
	suite.Equal(actor, entry.CreatedBy)
	suite.Equal(domain.Money(0), balanceOf(suite.T(), suite.h, "1110"), "drafts do not touch balances")

	stored, err := suite.svc().GetEntry(suite.ctx, entry.EntryID)
	suite.Require().NoError(err)
	suite.Equal(entry.Number, stored.Number)

	suite.Equal(domain.OutcomeSuccess, suite.h.audit.last().Outcome)
	suite.Equal(domain.OpCreateEntry, suite.h.audit.last().Operation)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_NoLines() {
	_, err := suite.svc().CreateEntry(suite.ctx, domain.EntryInput{Description: "empty"}, actor)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(domain.OutcomeFailure, suite.h.audit.last().Outcome)
}

func (suite *JournalServiceTestSuite) TestGetEntry_NotFound() {
	_, err := suite.svc().GetEntry(suite.ctx, "missing")
	suite.Equal(domain.KindNotFound, suite.entryKind(err))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestPostEntry_RequiresOpenPeriod() {
	entry, err := suite.svc().CreateEntry(suite.ctx, saleInput("Till sale", 1000), actor)
	suite.Require().NoError(err)

	_, err = suite.svc().PostEntry(suite.ctx, entry.EntryID, actor)
	var perr *domain.PeriodError
	suite.Require().True(errors.As(err, &perr))
	suite.Equal(domain.KindNoOpenPeriod, perr.Kind)

	p := suite.h.openPeriod(suite.T(), "2024-01-01", "2024-03-31")
	_, err = suite.h.container.Period.ClosePeriod(suite.ctx, p.PeriodID, actor)
	suite.Require().NoError(err)

	_, err = suite.svc().PostEntry(suite.ctx, entry.EntryID, actor)
	suite.Require().True(errors.As(err, &perr))
	suite.Equal(domain.KindPeriodClosed, perr.Kind)
	suite.Equal(domain.Money(0), balanceOf(suite.T(), suite.h, "1110"))
}

func (suite *JournalServiceTestSuite) TestPostEntry_AppliesBalancesOnce() {
	suite.h.openPeriod(suite.T(), "2024-01-01", "2024-03-31")
	entry, err := suite.svc().CreateEntry(suite.ctx, saleInput("Till sale", 1000), actor)
	suite.Require().NoError(err)

	posted, err := suite.svc().PostEntry(suite.ctx, entry.EntryID, actor)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, posted.Status)
	suite.Equal(domain.Money(1000), balanceOf(suite.T(), suite.h, "1110"))
	suite.Equal(domain.Money(1000), balanceOf(suite.T(), suite.h, "4100"))

	_, err = suite.svc().PostEntry(suite.ctx, entry.EntryID, actor)
	suite.Equal(domain.KindInvalidTransition, suite.entryKind(err))
	suite.Equal(domain.Money(1000), balanceOf(suite.T(), suite.h, "1110"))

	_, err = suite.svc().UpdateEntry(suite.ctx, entry.EntryID, saleInput("changed", 5), actor)
	suite.Equal(domain.KindInvalidTransition, suite.entryKind(err))
}

func (suite *JournalServiceTestSuite) TestPostEntry_RejectsInvalidEntry() {
	suite.h.openPeriod(suite.T(), "2024-01-01", "2024-03-31")
	in := saleInput("Unbalanced", 1000)
	in.Lines[1].Credit = 900
	entry, err := suite.svc().CreateEntry(suite.ctx, in, actor)
	suite.Require().NoError(err, "drafts may be unbalanced")

	_, err = suite.svc().PostEntry(suite.ctx, entry.EntryID, actor)
	var verr *domain.EntryValidationError
	suite.Require().True(errors.As(err, &verr))
	suite.True(verr.Result.Has(domain.KindUnbalanced))

	evt := suite.h.audit.last()
	suite.Equal(domain.OpPostEntry, evt.Operation)
	suite.Equal(domain.OutcomeFailure, evt.Outcome)
	suite.Require().NotEmpty(evt.Errors)
	suite.Equal(string(domain.KindUnbalanced), evt.Errors[0].Kind)
}

func (suite *JournalServiceTestSuite) TestPostEntry_DuplicateDetection() {
	suite.h.openPeriod(suite.T(), "2024-01-01", "2024-03-31")
	first, err := suite.svc().CreateEntry(suite.ctx, saleInput("Daily takings", 1000), actor)
	suite.Require().NoError(err)
	_, err = suite.svc().PostEntry(suite.ctx, first.EntryID, actor)
	suite.Require().NoError(err)

	second, err := suite.svc().CreateEntry(suite.ctx, saleInput("daily takings ", 1000), actor)
	suite.Require().NoError(err)
	_, err = suite.svc().PostEntry(suite.ctx, second.EntryID, actor)
	var verr *domain.EntryValidationError
	suite.Require().True(errors.As(err, &verr))
	suite.Equal([]domain.ErrorKind{domain.KindDuplicate}, verr.Result.Kinds())

	_, err = suite.h.container.Settings.UpdateSettings(suite.ctx, domain.RuleSettingsPatch{CheckDuplicateEntries: boolPtr(false)}, actor)
	suite.Require().NoError(err)
	_, err = suite.svc().PostEntry(suite.ctx, second.EntryID, actor)
	suite.NoError(err)
}

func (suite *JournalServiceTestSuite) TestApprovalPolicy() {
	suite.h.openPeriod(suite.T(), "2024-01-01", "2024-03-31")
	_, err := suite.h.container.Settings.UpdateSettings(suite.ctx, domain.RuleSettingsPatch{RequireApproval: boolPtr(true)}, actor)
	suite.Require().NoError(err)

	entry, err := suite.svc().CreateEntry(suite.ctx, saleInput("Needs approval", 700), actor)
	suite.Require().NoError(err)

	_, err = suite.svc().PostEntry(suite.ctx, entry.EntryID, actor)
	suite.Equal(domain.KindApprovalRequired, suite.entryKind(err))

	approved, err := suite.svc().ApproveEntry(suite.ctx, entry.EntryID, "manager")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, approved.Status)
	suite.Equal("manager", approved.LastUpdatedBy)
	suite.Equal(domain.Money(700), balanceOf(suite.T(), suite.h, "1110"))
}

func (suite *JournalServiceTestSuite) TestRejectEntry() {
	suite.h.openPeriod(suite.T(), "2024-01-01", "2024-03-31")
	entry, err := suite.svc().CreateEntry(suite.ctx, saleInput("Wrong", 10), actor)
	suite.Require().NoError(err)

	rejected, err := suite.svc().RejectEntry(suite.ctx, entry.EntryID, actor)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusRejected, rejected.Status)

	_, err = suite.svc().PostEntry(suite.ctx, entry.EntryID, actor)
	suite.Equal(domain.KindInvalidTransition, suite.entryKind(err))
}

func (suite *JournalServiceTestSuite) TestReverseEntry() {
	suite.h.openPeriod(suite.T(), "2024-01-01", "2024-03-31")
	entry, err := suite.svc().CreateEntry(suite.ctx, saleInput("Till sale", 1000), actor)
	suite.Require().NoError(err)

	_, err = suite.svc().ReverseEntry(suite.ctx, entry.EntryID, nil, actor)
	suite.Equal(domain.KindInvalidTransition, suite.entryKind(err), "drafts cannot be reversed")

	_, err = suite.svc().PostEntry(suite.ctx, entry.EntryID, actor)
	suite.Require().NoError(err)

	reversal, err := suite.svc().ReverseEntry(suite.ctx, entry.EntryID, nil, actor)
	suite.Require().NoError(err)
	suite.Equal("REV-000001", reversal.Number)
	suite.Equal(domain.StatusPosted, reversal.Status)
	suite.Equal(domain.SourceReversal, reversal.Source)
	suite.Equal(entry.EntryID, reversal.ReversalOf)
	suite.Equal(domain.Money(1000), reversal.Lines[0].Credit)
	suite.Equal(domain.Money(0), balanceOf(suite.T(), suite.h, "1110"))
	suite.Equal(domain.Money(0), balanceOf(suite.T(), suite.h, "4100"))

	_, err = suite.svc().ReverseEntry(suite.ctx, entry.EntryID, nil, actor)
	suite.Equal(domain.KindAlreadyReversed, suite.entryKind(err))

	original, err := suite.svc().GetEntry(suite.ctx, entry.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, original.Status, "original is untouched")
}

func (suite *JournalServiceTestSuite) TestReverseEntry_DatedToday() {
	suite.h.openPeriod(suite.T(), "2024-01-01", "2024-03-31")
	in := saleInput("February sale", 400)
	in.Date = day("2024-02-01")
	first, err := suite.svc().CreateEntry(suite.ctx, in, actor)
	suite.Require().NoError(err)
	_, err = suite.svc().PostEntry(suite.ctx, first.EntryID, actor)
	suite.Require().NoError(err)
	second, err := suite.svc().CreateEntry(suite.ctx, in, actor)
	suite.Require().NoError(err)
	_, err = suite.h.container.Settings.UpdateSettings(suite.ctx, domain.RuleSettingsPatch{CheckDuplicateEntries: boolPtr(false)}, actor)
	suite.Require().NoError(err)
	_, err = suite.svc().PostEntry(suite.ctx, second.EntryID, actor)
	suite.Require().NoError(err)

	_, err = suite.h.container.Settings.UpdateSettings(suite.ctx, domain.RuleSettingsPatch{AllowBackdatedEntries: boolPtr(false)}, actor)
	suite.Require().NoError(err)

	reversal, err := suite.svc().ReverseEntry(suite.ctx, first.EntryID, nil, actor)
	suite.Require().NoError(err)
	suite.Equal(day("2024-03-15"), domain.DateOf(reversal.Date))

	backdated := day("2024-02-01")
	_, err = suite.svc().ReverseEntry(suite.ctx, second.EntryID, &backdated, actor)
	var verr *domain.EntryValidationError
	suite.Require().True(errors.As(err, &verr), "got %v", err)
	suite.True(verr.Result.Has(domain.KindBackdated))
}

func (suite *JournalServiceTestSuite) TestValidateInput() {
	res, err := suite.svc().ValidateInput(suite.ctx, domain.EntryInput{
		Description: "Mystery",
		Lines: []domain.EntryLineInput{
			{AccountID: "9999", Debit: 100},
			{AccountID: "4100", Credit: 100},
		},
	}, actor)
	suite.Require().NoError(err)
	suite.False(res.IsValid)
	suite.Equal([]domain.ErrorKind{domain.KindInvalidLine}, res.Kinds())
	suite.Equal("lines[0].accountID", res.Errors[0].Field)

	evt := suite.h.audit.last()
	suite.Equal(domain.OpValidateEntry, evt.Operation)
	suite.Equal(domain.OutcomeFailure, evt.Outcome)

	res, err = suite.svc().ValidateInput(suite.ctx, saleInput("Fine", 100), actor)
	suite.Require().NoError(err)
	suite.True(res.IsValid)
}

func (suite *JournalServiceTestSuite) TestListEntries() {
	for i := 0; i < 3; i++ {
		_, err := suite.svc().CreateEntry(suite.ctx, saleInput("sale", domain.Money(100+i)), actor)
		suite.Require().NoError(err)
	}
	page, err := suite.svc().ListEntries(suite.ctx, portssvc.ListEntriesParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Len(page.Entries, 2)
	suite.NotEmpty(page.NextToken)

	page, err = suite.svc().ListEntries(suite.ctx, portssvc.ListEntriesParams{Limit: 2, NextToken: page.NextToken})
	suite.Require().NoError(err)
	suite.Len(page.Entries, 1)
	suite.Empty(page.NextToken)

	_, err = suite.svc().ListEntries(suite.ctx, portssvc.ListEntriesParams{NextToken: "not-a-token"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func boolPtr(b bool) *bool { return &b }
