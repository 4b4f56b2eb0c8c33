package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func TestDateValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("date", validateDate))

	type req struct {
		Required string `validate:"required,date"`
		Optional string `validate:"date"`
	}
	assert.NoError(t, v.Struct(req{Required: "2024-02-29"}))
	assert.Error(t, v.Struct(req{Required: "2023-02-29"}))
	assert.Error(t, v.Struct(req{Required: "29/02/2024"}))
	assert.Error(t, v.Struct(req{Required: "2024-02-01", Optional: "tomorrow"}))
}

func TestEntryRequestToInput(t *testing.T) {
	req := EntryRequest{
		Date:        "2024-03-15",
		Description: "Till sale",
		Lines: []EntryLineRequest{
			{AccountID: "1110", Debit: decimal.RequireFromString("12.34")},
			{AccountID: "4100", Credit: decimal.RequireFromString("12.34")},
		},
	}
	in, err := req.ToInput()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", in.Date.Format(domain.DateLayout))
	require.Len(t, in.Lines, 2)
	assert.Equal(t, domain.Money(1234), in.Lines[0].Debit)
	assert.Equal(t, domain.Money(0), in.Lines[0].Credit)
	assert.Equal(t, domain.Money(1234), in.Lines[1].Credit)

	req.Lines[1].Credit = decimal.RequireFromString("12.345")
	_, err = req.ToInput()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "lines[1].credit")
}

func TestAutomaticEntryRequestToPayload(t *testing.T) {
	payload, err := AutomaticEntryRequest{
		EventType:     "Payment_Receipt",
		Date:          "2024-05-01",
		Amount:        decimal.RequireFromString("250"),
		CustomerName:  "Acme",
		InvoiceNumber: "INV-7",
		PaymentMethod: "bank",
	}.ToPayload()
	require.NoError(t, err)
	assert.Equal(t, domain.Money(25000), payload.Amount)
	assert.Equal(t, "bank", payload.PaymentMethod)
	assert.Equal(t, "INV-7", payload.InvoiceNumber)
	assert.Equal(t, 2024, payload.Date.Year())

	// The event type is not checked here.
	_, err = AutomaticEntryRequest{EventType: "barter", Date: "2024-05-01"}.ToPayload()
	require.NoError(t, err)

	_, err = AutomaticEntryRequest{EventType: "sale_cash", Date: "2024-05-01", Amount: decimal.RequireFromString("1.005")}.ToPayload()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestListEntriesParamsRange(t *testing.T) {
	params, err := ListEntriesParams{From: "2024-01-01", To: "2024-01-31", Status: "POSTED"}.ToServiceParams()
	require.NoError(t, err)
	require.NotNil(t, params.Filter.From)
	require.NotNil(t, params.Filter.To)
	assert.Equal(t, domain.StatusPosted, params.Filter.Status)

	_, err = ListEntriesParams{From: "2024-02-01", To: "2024-01-31"}.ToServiceParams()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateRuleSettingsRequestToPatch(t *testing.T) {
	ceiling := decimal.RequireFromString("5000.00")
	patch, err := UpdateRuleSettingsRequest{MaxEntryAmount: &ceiling}.ToPatch()
	require.NoError(t, err)
	require.NotNil(t, patch.MaxEntryAmount)
	assert.Equal(t, domain.Money(500000), *patch.MaxEntryAmount)
	assert.Nil(t, patch.RequireApproval)
}
