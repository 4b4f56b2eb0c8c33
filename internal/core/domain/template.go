package domain

import (
	"fmt"
	"sort"
	"sync"
)

// LegSpec resolves one side of a template to an account role. A leg either
// has a fixed Role or picks one from ByMethod using the event's payment method.
type LegSpec struct {
	Role     AccountRole
	ByMethod map[PaymentMethod]AccountRole
}

func (l LegSpec) resolve(method PaymentMethod) (AccountRole, bool) {
	if l.ByMethod == nil {
		return l.Role, l.Role != ""
	}
	if method == "" {
		method = PaymentCash
	}
	r, ok := l.ByMethod[method]
	return r, ok
}

// EntryTemplate is the two-line skeleton booked for an event kind.
type EntryTemplate struct {
	Kind   EventKind
	Debit  LegSpec
	Credit LegSpec
}

// DefaultTemplates returns the stock templates for every known event kind.
func DefaultTemplates() []EntryTemplate {
	return []EntryTemplate{
		{
			Kind:   EventSaleCash,
			Debit:  LegSpec{Role: RoleCash},
			Credit: LegSpec{Role: RoleSalesRevenue},
		},
		{
			Kind:   EventPurchaseCash,
			Debit:  LegSpec{Role: RolePurchases},
			Credit: LegSpec{Role: RoleCash},
		},
		{
			Kind: EventPaymentReceipt,
			Debit: LegSpec{ByMethod: map[PaymentMethod]AccountRole{
				PaymentCash:  RoleCash,
				PaymentBank:  RoleBank,
				PaymentCheck: RoleChecksInCollection,
				PaymentCard:  RoleCardReceivable,
			}},
			Credit: LegSpec{Role: RoleAccountsReceivable},
		},
		{
			Kind:  EventVendorPayment,
			Debit: LegSpec{Role: RoleAccountsPayable},
			Credit: LegSpec{ByMethod: map[PaymentMethod]AccountRole{
				PaymentCash:  RoleCash,
				PaymentBank:  RoleBank,
				PaymentCheck: RoleChecksOut,
			}},
		},
	}
}

// TemplateSet is a registry of templates keyed by event kind. It is safe for
// concurrent use.
type TemplateSet struct {
	mu        sync.RWMutex
	templates map[EventKind]EntryTemplate
}

// NewTemplateSet returns a set holding the given templates.
func NewTemplateSet(templates ...EntryTemplate) *TemplateSet {
	ts := &TemplateSet{templates: make(map[EventKind]EntryTemplate, len(templates))}
	for _, t := range templates {
		ts.templates[t.Kind] = t
	}
	return ts
}

// Register adds or replaces the template for t.Kind.
func (ts *TemplateSet) Register(t EntryTemplate) error {
	if t.Kind == "" {
		return fmt.Errorf("template has no event kind")
	}
	if t.Debit.Role == "" && t.Debit.ByMethod == nil {
		return fmt.Errorf("template %s has no debit leg", t.Kind)
	}
	if t.Credit.Role == "" && t.Credit.ByMethod == nil {
		return fmt.Errorf("template %s has no credit leg", t.Kind)
	}
	ts.mu.Lock()
	ts.templates[t.Kind] = t
	ts.mu.Unlock()
	return nil
}

// Lookup returns the template registered for kind.
func (ts *TemplateSet) Lookup(kind EventKind) (EntryTemplate, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	t, ok := ts.templates[kind]
	return t, ok
}

// Kinds lists registered event kinds in sorted order.
func (ts *TemplateSet) Kinds() []EventKind {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	out := make([]EventKind, 0, len(ts.templates))
	for k := range ts.templates {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
