package audit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/middleware"
)

// Hub fans events out to live subscribers such as websocket streams. Record
// never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan domain.AuditEvent
	nextID  uint64
	bufSize int
	dropped atomic.Int64
}

// NewHub creates a hub whose subscribers buffer up to bufSize events.
func NewHub(bufSize int) *Hub {
	if bufSize < 1 {
		bufSize = 64
	}
	return &Hub{subs: make(map[uint64]chan domain.AuditEvent), bufSize: bufSize}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan domain.AuditEvent, func()) {
	ch := make(chan domain.AuditEvent, h.bufSize)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Record(ctx context.Context, evt domain.AuditEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			h.dropped.Add(1)
			middleware.GetLoggerFromCtx(ctx).Debug("audit hub: subscriber buffer full, dropping event")
		}
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was slow.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
