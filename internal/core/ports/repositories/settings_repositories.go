package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// SettingsRepository persists the process-wide rule settings.
type SettingsRepository interface {
	// LoadRuleSettings returns the stored settings or apperrors.ErrNotFound if none were saved.
	LoadRuleSettings(ctx context.Context) (*domain.RuleSettings, error)

	// SaveRuleSettings replaces the stored settings.
	SaveRuleSettings(ctx context.Context, settings domain.RuleSettings, actor string) error
}
