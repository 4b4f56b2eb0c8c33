package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func TestCreateAutomaticJournalEntry_VendorPaymentByCheck(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()

	evt, err := domain.NewBusinessEvent("vendor_payment", domain.EventPayload{
		Amount: 5000, VendorName: "V", PaymentMethod: "check",
	})
	require.NoError(t, err)

	entry, err := h.container.Generator.CreateAutomaticJournalEntry(ctx, evt, actor)
	require.NoError(t, err)

	assert.Equal(t, "AUTO-000001", entry.Number)
	assert.Equal(t, domain.StatusDraft, entry.Status)
	assert.Equal(t, domain.SourceAutomatic, entry.Source)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, "2100", entry.Lines[0].AccountID)
	assert.Equal(t, domain.Money(5000), entry.Lines[0].Debit)
	assert.Equal(t, "Accounts Payable", entry.Lines[0].AccountName)
	assert.Equal(t, "2200", entry.Lines[1].AccountID)
	assert.Equal(t, domain.Money(5000), entry.Lines[1].Credit)
	assert.Equal(t, day("2024-03-15"), entry.Date)

	res, err := h.container.Journal.ValidateJournalEntry(ctx, *entry)
	require.NoError(t, err)
	assert.True(t, res.IsValid, "%v", res.Errors)

	stored, err := h.container.Journal.GetEntry(ctx, entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, entry.Lines, stored.Lines)

	evts := h.audit.byOperation(domain.OpGenerateEntry)
	require.Len(t, evts, 1)
	assert.Equal(t, domain.OutcomeSuccess, evts[0].Outcome)
	assert.Equal(t, entry.EntryID, evts[0].EntityID)
}

func TestCreateAutomaticJournalEntry_CanBePosted(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()
	h.openPeriod(t, "2024-01-01", "2024-03-31")

	evt, err := domain.NewBusinessEvent("payment_receipt", domain.EventPayload{Amount: 5000, PaymentMethod: "bank", CustomerName: "X"})
	require.NoError(t, err)
	entry, err := h.container.Generator.CreateAutomaticJournalEntry(ctx, evt, actor)
	require.NoError(t, err)

	_, err = h.container.Journal.PostEntry(ctx, entry.EntryID, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(5000), balanceOf(t, h, "1120"))
	assert.Equal(t, domain.Money(-5000), balanceOf(t, h, "1200"))
}

func TestCreateAutomaticJournalEntry_Rejections(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()

	evt, err := domain.NewBusinessEvent("vendor_payment", domain.EventPayload{Amount: 10, PaymentMethod: "card"})
	require.NoError(t, err)
	_, err = h.container.Generator.CreateAutomaticJournalEntry(ctx, evt, actor)
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, domain.KindUnsupportedPaymentMethod, genErr.Kind)

	ceiling := domain.Money(100)
	_, err = h.container.Settings.UpdateSettings(ctx, domain.RuleSettingsPatch{MaxEntryAmount: &ceiling}, actor)
	require.NoError(t, err)
	evt, err = domain.NewBusinessEvent("sale_cash", domain.EventPayload{Amount: 101})
	require.NoError(t, err)
	_, err = h.container.Generator.CreateAutomaticJournalEntry(ctx, evt, actor)
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, domain.KindValidationFailed, genErr.Kind)

	evts := h.audit.byOperation(domain.OpGenerateEntry)
	require.Len(t, evts, 2)
	for _, e := range evts {
		assert.Equal(t, domain.OutcomeFailure, e.Outcome)
	}

	entries, _, err := h.store.ListEntries(ctx, domain.EntryFilter{}, 10, "")
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is persisted on failure")
}

func TestRegisterTemplate(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()

	require.NoError(t, h.container.Generator.RegisterTemplate(ctx, domain.EntryTemplate{
		Kind:   domain.EventSaleCash,
		Debit:  domain.LegSpec{Role: domain.RoleBank},
		Credit: domain.LegSpec{Role: domain.RoleSalesRevenue},
	}))
	assert.Len(t, h.container.Generator.EventKinds(), 4)

	evt, err := domain.NewBusinessEvent("sale_cash", domain.EventPayload{Amount: 10})
	require.NoError(t, err)
	entry, err := h.container.Generator.CreateAutomaticJournalEntry(ctx, evt, actor)
	require.NoError(t, err)
	assert.Equal(t, "1120", entry.Lines[0].AccountID)
}

func TestGenerateFromPayload_IdenticalSalesBothPost(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())
	ctx := context.Background()
	h.openPeriod(t, "2024-01-01", "2024-03-31")

	payload := domain.EventPayload{Date: day("2024-03-15"), Amount: 1000, CustomerName: "Walk-in"}
	first, err := h.container.Generator.GenerateFromPayload(ctx, "sale_cash", payload, actor)
	require.NoError(t, err)
	second, err := h.container.Generator.GenerateFromPayload(ctx, "sale_cash", payload, actor)
	require.NoError(t, err)
	assert.Equal(t, first.Description, second.Description)

	_, err = h.container.Journal.PostEntry(ctx, first.EntryID, actor)
	require.NoError(t, err, "a matching draft is not a duplicate")
	_, err = h.container.Journal.PostEntry(ctx, second.EntryID, actor)
	require.NoError(t, err, "each generated entry has its own reference")
	assert.Equal(t, domain.Money(2000), balanceOf(t, h, "1110"))

	// Hand-keyed twins of a posted entry are still caught.
	manual, err := h.container.Journal.CreateEntry(ctx, domain.EntryInput{
		Date:        day("2024-03-15"),
		Description: first.Description,
		Lines: []domain.EntryLineInput{
			{AccountID: "1110", Debit: 1000},
			{AccountID: "4100", Credit: 1000},
		},
	}, actor)
	require.NoError(t, err)
	var verr *domain.EntryValidationError
	_, err = h.container.Journal.PostEntry(ctx, manual.EntryID, actor)
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, []domain.ErrorKind{domain.KindDuplicate}, verr.Result.Kinds())
}

func TestGenerateFromPayload_UnknownEventTypeIsAudited(t *testing.T) {
	h := newHarness(t, domain.DefaultRuleSettings())

	_, err := h.container.Generator.GenerateFromPayload(context.Background(), "refund", domain.EventPayload{Amount: 5}, actor)
	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, domain.KindUnknownEventType, genErr.Kind)

	evts := h.audit.byOperation(domain.OpGenerateEntry)
	require.Len(t, evts, 1)
	assert.Equal(t, domain.OutcomeFailure, evts[0].Outcome)
	assert.Equal(t, actor, evts[0].Actor)
}
