package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

const actor = "clerk"

// recordingSink keeps every audit event in memory.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *recordingSink) Record(_ context.Context, evt domain.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingSink) last() domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return domain.AuditEvent{}
	}
	return r.events[len(r.events)-1]
}

func (r *recordingSink) byOperation(op string) []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEvent
	for _, e := range r.events {
		if e.Operation == op {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	store     *memory.Store
	container *portssvc.ServiceContainer
	audit     *recordingSink
}

// newHarness wires every service over a fresh memory store seeded with the
// default chart.
func newHarness(t *testing.T, rules domain.RuleSettings) *harness {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	sink := &recordingSink{}

	cfg := &config.Config{Rules: rules}
	container, err := services.NewServiceContainer(ctx, cfg, store.Provider(), sink,
		services.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	_, err = container.Chart.SeedDefaultChart(ctx, actor)
	require.NoError(t, err)

	return &harness{store: store, container: container, audit: sink}
}

func (h *harness) openPeriod(t *testing.T, start, end string) *domain.AccountingPeriod {
	t.Helper()
	p, err := h.container.Period.CreatePeriod(context.Background(), domain.PeriodInput{
		Name: start + ".." + end, StartDate: day(start), EndDate: day(end),
	}, actor)
	require.NoError(t, err)
	return p
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func saleInput(desc string, amount domain.Money) domain.EntryInput {
	return domain.EntryInput{
		Date:        day("2024-03-15"),
		Description: desc,
		Lines: []domain.EntryLineInput{
			{AccountID: "1110", Debit: amount},
			{AccountID: "4100", Credit: amount},
		},
	}
}

func balanceOf(t *testing.T, h *harness, accountID string) domain.Money {
	t.Helper()
	a, err := h.store.FindAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	return a.Balance
}
