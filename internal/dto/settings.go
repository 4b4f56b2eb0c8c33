package dto

import (
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// RuleSettingsResponse defines the data returned for the rule settings.
type RuleSettingsResponse struct {
	EnforceValidation      bool             `json:"enforceValidation"`
	AllowBackdatedEntries  bool             `json:"allowBackdatedEntries"`
	MaxEntryAmount         *decimal.Decimal `json:"maxEntryAmount"`
	RequireApproval        bool             `json:"requireApproval"`
	CheckDuplicateEntries  bool             `json:"checkDuplicateEntries"`
	AllowNegativeInventory bool             `json:"allowNegativeInventory"`
}

// UpdateRuleSettingsRequest is a partial update of the rule settings.
// ClearMaxEntryAmount removes the ceiling.
type UpdateRuleSettingsRequest struct {
	EnforceValidation      *bool            `json:"enforceValidation"`
	AllowBackdatedEntries  *bool            `json:"allowBackdatedEntries"`
	MaxEntryAmount         *decimal.Decimal `json:"maxEntryAmount"`
	ClearMaxEntryAmount    bool             `json:"clearMaxEntryAmount"`
	RequireApproval        *bool            `json:"requireApproval"`
	CheckDuplicateEntries  *bool            `json:"checkDuplicateEntries"`
	AllowNegativeInventory *bool            `json:"allowNegativeInventory"`
}

// ToPatch converts the request to a settings patch.
func (r UpdateRuleSettingsRequest) ToPatch() (domain.RuleSettingsPatch, error) {
	patch := domain.RuleSettingsPatch{
		EnforceValidation:      r.EnforceValidation,
		AllowBackdatedEntries:  r.AllowBackdatedEntries,
		ClearMaxEntryAmount:    r.ClearMaxEntryAmount,
		RequireApproval:        r.RequireApproval,
		CheckDuplicateEntries:  r.CheckDuplicateEntries,
		AllowNegativeInventory: r.AllowNegativeInventory,
	}
	if r.MaxEntryAmount != nil {
		m, err := toMoney("maxEntryAmount", *r.MaxEntryAmount)
		if err != nil {
			return patch, err
		}
		patch.MaxEntryAmount = &m
	}
	return patch, nil
}

// ToRuleSettingsResponse converts domain settings to the response DTO.
func ToRuleSettingsResponse(s domain.RuleSettings) RuleSettingsResponse {
	resp := RuleSettingsResponse{
		EnforceValidation:      s.EnforceValidation,
		AllowBackdatedEntries:  s.AllowBackdatedEntries,
		RequireApproval:        s.RequireApproval,
		CheckDuplicateEntries:  s.CheckDuplicateEntries,
		AllowNegativeInventory: s.AllowNegativeInventory,
	}
	if s.MaxEntryAmount != nil {
		d := s.MaxEntryAmount.Decimal()
		resp.MaxEntryAmount = &d
	}
	return resp
}
