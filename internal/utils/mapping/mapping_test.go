package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func TestJournalEntryMappingKeepsLineOrderAndNulls(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	entry := domain.JournalEntry{
		EntryID:     "e1",
		Number:      "JE-000001",
		Date:        time.Date(2024, 2, 1, 18, 30, 0, 0, time.UTC),
		Description: "Rent",
		Lines: []domain.JournalEntryLine{
			{LineID: "b", AccountID: "5200", Debit: 100},
			{LineID: "a", AccountID: "1120", Credit: 100},
		},
		Status:      domain.StatusDraft,
		Source:      domain.SourceManual,
		AuditFields: domain.NewAuditFields("u", now),
	}
	entry.Recalculate()

	row, lines := ToModelJournalEntry(entry)
	assert.Nil(t, row.ReversalOf)
	assert.Nil(t, row.EventKind)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].LineNo)

	back := ToDomainJournalEntry(row, lines)
	entry.Date = domain.DateOf(entry.Date)
	assert.Equal(t, entry, back)
}

func TestSettingsMappingCopiesCeiling(t *testing.T) {
	ceiling := domain.Money(500)
	s := domain.DefaultRuleSettings()
	s.MaxEntryAmount = &ceiling

	row := ToModelRuleSettings(s, "admin", time.Now())
	require.NotNil(t, row.MaxEntryAmount)
	*row.MaxEntryAmount = 1
	assert.Equal(t, domain.Money(500), *s.MaxEntryAmount)

	row.MaxEntryAmount = nil
	assert.Nil(t, ToDomainRuleSettings(row).MaxEntryAmount)
}
