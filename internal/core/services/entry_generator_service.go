package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// entryGeneratorService books business events through the template generator
// and stores the result as an automatic draft.
type entryGeneratorService struct {
	BaseService
	generator   *domain.Generator
	journalRepo portsrepo.JournalRepositoryFacade
	chartSvc    portssvc.ChartReaderSvc
	settingsSvc portssvc.SettingsSvcFacade
}

// NewEntryGeneratorService creates a generator service. A nil generator uses
// the default templates and role map.
func NewEntryGeneratorService(
	generator *domain.Generator,
	journalRepo portsrepo.JournalRepositoryFacade,
	chartSvc portssvc.ChartReaderSvc,
	settingsSvc portssvc.SettingsSvcFacade,
	options ...ServiceOption,
) portssvc.EntryGeneratorSvc {
	if generator == nil {
		generator = domain.NewGenerator()
	}
	return &entryGeneratorService{
		BaseService: newBaseService(options...),
		generator:   generator,
		journalRepo: journalRepo,
		chartSvc:    chartSvc,
		settingsSvc: settingsSvc,
	}
}

var _ portssvc.EntryGeneratorSvc = (*entryGeneratorService)(nil)

func (s *entryGeneratorService) CreateAutomaticJournalEntry(ctx context.Context, evt domain.BusinessEvent, actor string) (entry *domain.JournalEntry, err error) {
	var kind domain.EventKind
	if evt != nil {
		kind = evt.Kind()
	}
	defer func() {
		id := ""
		if entry != nil {
			id = entry.EntryID
		}
		if err != nil {
			s.LogFailure(ctx, err, "Automatic entry generation failed", slog.String("event_type", string(kind)))
		}
		s.Audit(ctx, domain.OpGenerateEntry, id, actor, err)
	}()

	// Names are a snapshot; a lookup failure leaves them empty.
	var lookup domain.AccountLookup
	if chart, chartErr := s.chartSvc.Chart(ctx); chartErr == nil {
		lookup = chart.Lookup
	} else {
		s.LogWarn(ctx, chartErr, "Chart unavailable, generating without account names")
	}

	generated, err := s.generator.Generate(evt, domain.GenerateInput{
		EntryID:  s.newID(),
		Actor:    actor,
		Now:      s.now(),
		Settings: s.settingsSvc.CurrentRuleSettings(ctx),
		Lookup:   lookup,
		LineID:   s.newID,
	})
	if err != nil {
		return nil, err
	}

	seq, err := s.journalRepo.NextEntryNumber(ctx, domain.AutomaticEntryPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate entry number: %w", err)
	}
	generated.Number = domain.FormatEntryNumber(domain.AutomaticEntryPrefix, seq)

	if err := s.journalRepo.SaveEntry(ctx, generated); err != nil {
		return nil, fmt.Errorf("failed to save generated entry: %w", err)
	}

	s.LogInfo(ctx, "Automatic journal entry created",
		slog.String("entry_id", generated.EntryID),
		slog.String("number", generated.Number),
		slog.String("event_type", string(kind)),
		slog.String("amount", generated.TotalDebit.String()))
	return &generated, nil
}

func (s *entryGeneratorService) GenerateFromPayload(ctx context.Context, eventType string, payload domain.EventPayload, actor string) (*domain.JournalEntry, error) {
	evt, err := domain.NewBusinessEvent(eventType, payload)
	if err != nil {
		s.LogFailure(ctx, err, "Automatic entry generation failed", slog.String("event_type", eventType))
		s.Audit(ctx, domain.OpGenerateEntry, "", actor, err)
		return nil, err
	}
	return s.CreateAutomaticJournalEntry(ctx, evt, actor)
}

func (s *entryGeneratorService) RegisterTemplate(ctx context.Context, tmpl domain.EntryTemplate) error {
	if err := s.generator.Templates.Register(tmpl); err != nil {
		return err
	}
	s.LogInfo(ctx, "Entry template registered", slog.String("event_type", string(tmpl.Kind)))
	return nil
}

func (s *entryGeneratorService) EventKinds() []domain.EventKind {
	return s.generator.Templates.Kinds()
}
