package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// settingsService holds the process-wide RuleSettings. Reads return copies so
// callers never share mutable state with the service.
type settingsService struct {
	BaseService
	repo portsrepo.SettingsRepository

	mu       sync.RWMutex
	settings domain.RuleSettings
}

// NewSettingsService loads persisted settings, falling back to defaults when
// nothing has been saved yet.
func NewSettingsService(ctx context.Context, repo portsrepo.SettingsRepository, defaults domain.RuleSettings, options ...ServiceOption) (portssvc.SettingsSvcFacade, error) {
	s := &settingsService{
		BaseService: newBaseService(options...),
		repo:        repo,
		settings:    defaults,
	}
	if repo == nil {
		return s, nil
	}
	stored, err := repo.LoadRuleSettings(ctx)
	switch {
	case err == nil:
		s.settings = *stored
	case errors.Is(err, apperrors.ErrNotFound):
		s.LogDebug(ctx, "No stored rule settings, using defaults")
	default:
		s.LogError(ctx, err, "Failed to load rule settings")
		return nil, fmt.Errorf("failed to load rule settings: %w", err)
	}
	return s, nil
}

var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

func (s *settingsService) CurrentRuleSettings(ctx context.Context) domain.RuleSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.RuleSettingsPatch{}.Apply(s.settings)
}

func (s *settingsService) UpdateSettings(ctx context.Context, patch domain.RuleSettingsPatch, actor string) (updated domain.RuleSettings, err error) {
	defer func() { s.Audit(ctx, domain.OpUpdateSettings, "rules", actor, err) }()

	if err := patch.Validate(); err != nil {
		s.LogWarn(ctx, err, "Rejected rule settings patch")
		return domain.RuleSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.Apply(s.settings)
	if s.repo != nil {
		if err := s.repo.SaveRuleSettings(ctx, next, actor); err != nil {
			s.LogError(ctx, err, "Failed to persist rule settings")
			return domain.RuleSettings{}, fmt.Errorf("failed to persist rule settings: %w", err)
		}
	}
	s.settings = next

	s.LogInfo(ctx, "Rule settings updated",
		slog.String("actor", actor),
		slog.Bool("enforce_validation", next.EnforceValidation),
		slog.Bool("require_approval", next.RequireApproval))
	return domain.RuleSettingsPatch{}.Apply(next), nil
}
