package dto

import (
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// TrialBalanceRowResponse is one account line of the trial balance.
type TrialBalanceRowResponse struct {
	AccountID   string             `json:"accountID"`
	Number      string             `json:"number"`
	AccountName string             `json:"accountName"`
	AccountType domain.AccountType `json:"accountType"`
	Debit       decimal.Decimal    `json:"debit"`
	Credit      decimal.Decimal    `json:"credit"`
}

// TrialBalanceResponse defines the data returned for the trial balance.
type TrialBalanceResponse struct {
	Rows        []TrialBalanceRowResponse `json:"rows"`
	TotalDebit  decimal.Decimal           `json:"totalDebit"`
	TotalCredit decimal.Decimal           `json:"totalCredit"`
	Balanced    bool                      `json:"balanced"`
}

// ToTrialBalanceResponse converts a domain trial balance to the response DTO.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		Rows:        make([]TrialBalanceRowResponse, len(tb.Rows)),
		TotalDebit:  tb.TotalDebit.Decimal(),
		TotalCredit: tb.TotalCredit.Decimal(),
		Balanced:    tb.Balanced,
	}
	for i, r := range tb.Rows {
		resp.Rows[i] = TrialBalanceRowResponse{
			AccountID:   r.AccountID,
			Number:      r.Number,
			AccountName: r.AccountName,
			AccountType: r.AccountType,
			Debit:       r.Debit.Decimal(),
			Credit:      r.Credit.Decimal(),
		}
	}
	return resp
}
