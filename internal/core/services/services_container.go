package services

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(ctx context.Context, cfg *config.Config, repos portsrepo.RepositoryProvider, audit portssvc.AuditSink, options ...ServiceOption) (*portssvc.ServiceContainer, error) {
	options = append([]ServiceOption{WithAuditSink(audit)}, options...)

	container := &portssvc.ServiceContainer{Audit: audit}

	settings, err := NewSettingsService(ctx, repos.SettingsRepo, cfg.Rules, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise settings service: %w", err)
	}
	container.Settings = settings

	container.Chart = NewChartService(repos.AccountRepo, options...)
	container.Period = NewPeriodService(repos.PeriodRepo, options...)
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo, container.Settings, container.Period, options...)
	container.Generator = NewEntryGeneratorService(nil, repos.JournalRepo, container.Chart, container.Settings, options...)

	return container, nil
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ChartSvcFacade    = (*chartService)(nil)
	_ portssvc.SettingsSvcFacade = (*settingsService)(nil)
	_ portssvc.PeriodSvcFacade   = (*periodService)(nil)
	_ portssvc.JournalSvcFacade  = (*journalService)(nil)
	_ portssvc.EntryGeneratorSvc = (*entryGeneratorService)(nil)
)
