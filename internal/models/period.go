package models

import "time"

// AccountingPeriod is a row of the accounting_periods table.
type AccountingPeriod struct {
	PeriodID     string     `db:"period_id"`
	Name         string     `db:"name"`
	StartDate    time.Time  `db:"start_date"`
	EndDate      time.Time  `db:"end_date"`
	IsClosed     bool       `db:"is_closed"`
	ClosedAt     *time.Time `db:"closed_at"` // Nullable
	FiscalYearID string     `db:"fiscal_year_id"`
	AuditFields
}
