package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// SettingsSvcFacade owns the single process-wide RuleSettings value.
type SettingsSvcFacade interface {
	// CurrentRuleSettings returns a copy of the active settings.
	CurrentRuleSettings(ctx context.Context) domain.RuleSettings

	// UpdateSettings applies patch, persists the result, and returns it.
	UpdateSettings(ctx context.Context, patch domain.RuleSettingsPatch, actor string) (domain.RuleSettings, error)
}
