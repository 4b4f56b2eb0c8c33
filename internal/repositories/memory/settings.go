package memory

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func (s *Store) LoadRuleSettings(ctx context.Context) (*domain.RuleSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, apperrors.ErrNotFound
	}
	copied := domain.RuleSettingsPatch{}.Apply(*s.settings)
	return &copied, nil
}

func (s *Store) SaveRuleSettings(ctx context.Context, settings domain.RuleSettings, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := domain.RuleSettingsPatch{}.Apply(settings)
	s.settings = &copied
	return nil
}
