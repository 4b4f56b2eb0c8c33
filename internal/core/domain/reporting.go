package domain

import "sort"

// TrialBalanceRow is one account with a non-zero balance, shown on its
// natural side.
type TrialBalanceRow struct {
	AccountID   string      `json:"accountID"`
	Number      string      `json:"number"`
	AccountName string      `json:"accountName"`
	AccountType AccountType `json:"accountType"`
	Debit       Money       `json:"debit"`
	Credit      Money       `json:"credit"`
}

// TrialBalance lists account balances. When every committed entry balanced,
// TotalDebit equals TotalCredit.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  Money             `json:"totalDebit"`
	TotalCredit Money             `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}

// BuildTrialBalance places each account's signed balance on the debit or
// credit column. A balance below zero lands on the side opposite the
// account's normal side. Rows are ordered by account number.
func BuildTrialBalance(accounts []Account) TrialBalance {
	tb := TrialBalance{Rows: []TrialBalanceRow{}}
	for _, a := range accounts {
		if a.Balance == 0 {
			continue
		}
		row := TrialBalanceRow{
			AccountID:   a.AccountID,
			Number:      a.Number,
			AccountName: a.Name,
			AccountType: a.AccountType,
		}
		debitSide := a.AccountType.IsDebitNormal() == (a.Balance > 0)
		if debitSide {
			row.Debit = a.Balance.Abs()
		} else {
			row.Credit = a.Balance.Abs()
		}
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
		tb.Rows = append(tb.Rows, row)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Number < tb.Rows[j].Number })
	tb.Balanced = tb.TotalDebit == tb.TotalCredit
	return tb
}
