// Package audit holds the sinks that receive the core's structured audit
// events. The core only emits events; sinks decide how to render them.
package audit

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/middleware"
)

// LogSink writes every event as a structured log line using the request
// logger when one is in the context.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (LogSink) Record(ctx context.Context, evt domain.AuditEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)
	attrs := []any{
		slog.String("audit_id", evt.ID),
		slog.String("operation", evt.Operation),
		slog.String("outcome", string(evt.Outcome)),
		slog.String("entity_id", evt.EntityID),
		slog.String("actor", evt.Actor),
	}
	if len(evt.Errors) > 0 {
		kinds := make([]string, len(evt.Errors))
		for i, d := range evt.Errors {
			kinds[i] = d.Kind
		}
		attrs = append(attrs, slog.Any("error_kinds", kinds))
		logger.Warn("audit", attrs...)
		return
	}
	logger.Info("audit", attrs...)
}

// Fanout forwards each event to every sink in order.
type Fanout []portssvc.AuditSink

func (f Fanout) Record(ctx context.Context, evt domain.AuditEvent) {
	for _, s := range f {
		if s != nil {
			s.Record(ctx, evt)
		}
	}
}

var (
	_ portssvc.AuditSink = LogSink{}
	_ portssvc.AuditSink = Fanout(nil)
	_ portssvc.AuditSink = (*Ring)(nil)
	_ portssvc.AuditSink = (*Hub)(nil)
)
