package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
)

// RuleSettings controls validation strictness. It is always passed by value;
// the single process-wide instance lives with the settings service.
type RuleSettings struct {
	EnforceValidation      bool   `json:"enforceValidation"`
	AllowBackdatedEntries  bool   `json:"allowBackdatedEntries"`
	MaxEntryAmount         *Money `json:"maxEntryAmount"` // nil means no ceiling
	RequireApproval        bool   `json:"requireApproval"`
	CheckDuplicateEntries  bool   `json:"checkDuplicateEntries"`
	AllowNegativeInventory bool   `json:"allowNegativeInventory"`
}

// DefaultRuleSettings returns the settings used before anything is persisted.
func DefaultRuleSettings() RuleSettings {
	return RuleSettings{
		EnforceValidation:      true,
		AllowBackdatedEntries:  true,
		RequireApproval:        false,
		CheckDuplicateEntries:  true,
		AllowNegativeInventory: false,
	}
}

// RuleSettingsPatch carries a partial update; nil fields are left unchanged.
type RuleSettingsPatch struct {
	EnforceValidation      *bool
	AllowBackdatedEntries  *bool
	MaxEntryAmount         *Money
	ClearMaxEntryAmount    bool
	RequireApproval        *bool
	CheckDuplicateEntries  *bool
	AllowNegativeInventory *bool
}

// Validate rejects patches that could never be applied.
func (p RuleSettingsPatch) Validate() error {
	if p.MaxEntryAmount != nil && p.ClearMaxEntryAmount {
		return fmt.Errorf("%w: maxEntryAmount cannot be set and cleared in the same patch", apperrors.ErrValidation)
	}
	if p.MaxEntryAmount != nil && *p.MaxEntryAmount <= 0 {
		return fmt.Errorf("%w: maxEntryAmount must be positive", apperrors.ErrValidation)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p RuleSettingsPatch) IsEmpty() bool {
	return p.EnforceValidation == nil && p.AllowBackdatedEntries == nil && p.MaxEntryAmount == nil &&
		!p.ClearMaxEntryAmount && p.RequireApproval == nil && p.CheckDuplicateEntries == nil &&
		p.AllowNegativeInventory == nil
}

// Apply returns s with the patch applied. s is not modified.
func (p RuleSettingsPatch) Apply(s RuleSettings) RuleSettings {
	out := s
	if p.EnforceValidation != nil {
		out.EnforceValidation = *p.EnforceValidation
	}
	if p.AllowBackdatedEntries != nil {
		out.AllowBackdatedEntries = *p.AllowBackdatedEntries
	}
	if p.ClearMaxEntryAmount {
		out.MaxEntryAmount = nil
	}
	if p.MaxEntryAmount != nil {
		v := *p.MaxEntryAmount
		out.MaxEntryAmount = &v
	} else if out.MaxEntryAmount != nil {
		v := *out.MaxEntryAmount
		out.MaxEntryAmount = &v
	}
	if p.RequireApproval != nil {
		out.RequireApproval = *p.RequireApproval
	}
	if p.CheckDuplicateEntries != nil {
		out.CheckDuplicateEntries = *p.CheckDuplicateEntries
	}
	if p.AllowNegativeInventory != nil {
		out.AllowNegativeInventory = *p.AllowNegativeInventory
	}
	return out
}
