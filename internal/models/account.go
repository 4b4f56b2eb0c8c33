package models

// Account is a row of the accounts table. Balance is stored in minor units.
type Account struct {
	AccountID       string  `db:"account_id"`
	Number          string  `db:"number"`
	Name            string  `db:"name"`
	AccountType     string  `db:"account_type"`
	ParentAccountID *string `db:"parent_account_id"` // Nullable
	Description     string  `db:"description"`
	IsActive        bool    `db:"is_active"`
	Balance         int64   `db:"balance"`
	AuditFields
}
