package audit

import (
	"context"
	"sync"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// Ring keeps the most recent events in a fixed-size buffer.
type Ring struct {
	mu   sync.Mutex
	buf  []domain.AuditEvent
	next int
	full bool
}

// NewRing returns a ring holding up to size events.
func NewRing(size int) *Ring {
	if size < 1 {
		size = 256
	}
	return &Ring{buf: make([]domain.AuditEvent, size)}
}

func (r *Ring) Record(_ context.Context, evt domain.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = evt
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns up to limit events, newest first. A limit of zero or less
// returns everything held.
func (r *Ring) Recent(limit int) []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.full {
		n = len(r.buf)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.AuditEvent, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}
