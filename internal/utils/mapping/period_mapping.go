package mapping

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
)

// ToModelPeriod converts a domain AccountingPeriod to a model AccountingPeriod
func ToModelPeriod(d domain.AccountingPeriod) models.AccountingPeriod {
	return models.AccountingPeriod{
		PeriodID:     d.PeriodID,
		Name:         d.Name,
		StartDate:    domain.DateOf(d.StartDate),
		EndDate:      domain.DateOf(d.EndDate),
		IsClosed:     d.IsClosed,
		ClosedAt:     d.ClosedAt,
		FiscalYearID: d.FiscalYearID,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriod converts a model AccountingPeriod to a domain AccountingPeriod
func ToDomainPeriod(m models.AccountingPeriod) domain.AccountingPeriod {
	var closedAt *time.Time
	if m.ClosedAt != nil {
		t := m.ClosedAt.UTC()
		closedAt = &t
	}
	return domain.AccountingPeriod{
		PeriodID:     m.PeriodID,
		Name:         m.Name,
		StartDate:    domain.DateOf(m.StartDate),
		EndDate:      domain.DateOf(m.EndDate),
		IsClosed:     m.IsClosed,
		ClosedAt:     closedAt,
		FiscalYearID: m.FiscalYearID,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
