package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// AuditSink receives a structured event for every mutating call. Record must
// not block the caller for long and never fails the operation it reports.
type AuditSink interface {
	Record(ctx context.Context, evt domain.AuditEvent)
}
