package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// EntryGeneratorSvc books business events as journal entries.
type EntryGeneratorSvc interface {
	// CreateAutomaticJournalEntry generates, validates, and stores a draft for evt.
	// Failures are *domain.GenerationError values.
	CreateAutomaticJournalEntry(ctx context.Context, evt domain.BusinessEvent, actor string) (*domain.JournalEntry, error)

	// GenerateFromPayload builds the event for eventType from payload and
	// books it like CreateAutomaticJournalEntry. An event type without a
	// template fails with KindUnknownEventType and is audited.
	GenerateFromPayload(ctx context.Context, eventType string, payload domain.EventPayload, actor string) (*domain.JournalEntry, error)

	// RegisterTemplate adds or replaces the template used for an event kind.
	RegisterTemplate(ctx context.Context, tmpl domain.EntryTemplate) error

	// EventKinds lists the event kinds that have a template.
	EventKinds() []domain.EventKind
}
