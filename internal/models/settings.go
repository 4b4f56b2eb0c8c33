package models

import "time"

// RuleSettings is the single row of the rule_settings table.
type RuleSettings struct {
	EnforceValidation      bool      `db:"enforce_validation"`
	AllowBackdatedEntries  bool      `db:"allow_backdated_entries"`
	MaxEntryAmount         *int64    `db:"max_entry_amount"` // Nullable
	RequireApproval        bool      `db:"require_approval"`
	CheckDuplicateEntries  bool      `db:"check_duplicate_entries"`
	AllowNegativeInventory bool      `db:"allow_negative_inventory"`
	UpdatedAt              time.Time `db:"updated_at"`
	UpdatedBy              string    `db:"updated_by"`
}
