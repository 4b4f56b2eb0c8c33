package domain

import (
	"fmt"
	"time"
)

// AccountLookup resolves an account by id. A miss is not an error for the
// generator; the name snapshot is simply left empty.
type AccountLookup func(id string) (Account, bool)

// Generator turns business events into balanced two-line draft entries.
type Generator struct {
	Templates *TemplateSet
	Roles     map[AccountRole]string
}

// NewGenerator returns a generator with the default templates and role map.
func NewGenerator() *Generator {
	roles := make(map[AccountRole]string, len(DefaultRoleAccounts))
	for r, id := range DefaultRoleAccounts {
		roles[r] = id
	}
	return &Generator{Templates: NewTemplateSet(DefaultTemplates()...), Roles: roles}
}

// GenerateInput is everything Generate needs besides the event itself.
type GenerateInput struct {
	EntryID  string
	Number   string
	Actor    string
	Now      time.Time
	Settings RuleSettings
	Lookup   AccountLookup
	LineID   func() string
}

// Generate builds the draft entry for evt and validates it. The returned
// entry is always balanced and has passed validation; on any failure a
// *GenerationError is returned and no entry.
//
// Generated entries are always checked with line-shape validation enabled,
// whatever the EnforceValidation setting says.
func (g *Generator) Generate(evt BusinessEvent, in GenerateInput) (JournalEntry, error) {
	if evt == nil {
		return JournalEntry{}, &GenerationError{Kind: KindUnknownEventType, Detail: "no event"}
	}
	kind := evt.Kind()
	tmpl, ok := g.Templates.Lookup(kind)
	if !ok {
		return JournalEntry{}, &GenerationError{
			Kind:      KindUnknownEventType,
			EventKind: kind,
			Detail:    fmt.Sprintf("no template for event type %q", kind),
		}
	}

	method := paymentMethodOf(evt)
	debitRole, ok := tmpl.Debit.resolve(method)
	if !ok {
		return JournalEntry{}, unsupportedMethod(kind, method)
	}
	creditRole, ok := tmpl.Credit.resolve(method)
	if !ok {
		return JournalEntry{}, unsupportedMethod(kind, method)
	}

	amount := evt.EventAmount()
	desc := describeEvent(evt)
	date := evt.EventDate()
	if date.IsZero() {
		date = in.Now
	}

	entry := JournalEntry{
		EntryID:     in.EntryID,
		Number:      in.Number,
		Date:        DateOf(date),
		Description: desc,
		Lines: []JournalEntryLine{
			g.line(in, debitRole, desc, amount, 0),
			g.line(in, creditRole, desc, 0, amount),
		},
		Status:      StatusDraft,
		Source:      SourceAutomatic,
		EventKind:   kind,
		AuditFields: NewAuditFields(in.Actor, in.Now),
	}
	entry.Recalculate()

	strict := in.Settings
	strict.EnforceValidation = true
	if res := ValidateJournalEntry(entry, strict); !res.IsValid {
		return JournalEntry{}, &GenerationError{
			Kind:       KindValidationFailed,
			EventKind:  kind,
			Violations: res.Errors,
		}
	}
	return entry, nil
}

func (g *Generator) line(in GenerateInput, role AccountRole, desc string, debit, credit Money) JournalEntryLine {
	accountID := g.Roles[role]
	l := JournalEntryLine{
		AccountID:   accountID,
		Description: desc,
		Debit:       debit,
		Credit:      credit,
	}
	if in.LineID != nil {
		l.LineID = in.LineID()
	}
	if in.Lookup != nil && accountID != "" {
		if acc, ok := in.Lookup(accountID); ok {
			l.AccountName = acc.Name
		}
	}
	return l
}

func unsupportedMethod(kind EventKind, method PaymentMethod) *GenerationError {
	return &GenerationError{
		Kind:      KindUnsupportedPaymentMethod,
		EventKind: kind,
		Detail:    fmt.Sprintf("payment method %q is not supported for %s", method, kind),
	}
}
