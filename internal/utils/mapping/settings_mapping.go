package mapping

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
)

// ToModelRuleSettings converts domain RuleSettings to the stored row.
func ToModelRuleSettings(d domain.RuleSettings, actor string, now time.Time) models.RuleSettings {
	m := models.RuleSettings{
		EnforceValidation:      d.EnforceValidation,
		AllowBackdatedEntries:  d.AllowBackdatedEntries,
		RequireApproval:        d.RequireApproval,
		CheckDuplicateEntries:  d.CheckDuplicateEntries,
		AllowNegativeInventory: d.AllowNegativeInventory,
		UpdatedAt:              now,
		UpdatedBy:              actor,
	}
	if d.MaxEntryAmount != nil {
		v := int64(*d.MaxEntryAmount)
		m.MaxEntryAmount = &v
	}
	return m
}

// ToDomainRuleSettings converts the stored row to domain RuleSettings.
func ToDomainRuleSettings(m models.RuleSettings) domain.RuleSettings {
	d := domain.RuleSettings{
		EnforceValidation:      m.EnforceValidation,
		AllowBackdatedEntries:  m.AllowBackdatedEntries,
		RequireApproval:        m.RequireApproval,
		CheckDuplicateEntries:  m.CheckDuplicateEntries,
		AllowNegativeInventory: m.AllowNegativeInventory,
	}
	if m.MaxEntryAmount != nil {
		v := domain.Money(*m.MaxEntryAmount)
		d.MaxEntryAmount = &v
	}
	return d
}
