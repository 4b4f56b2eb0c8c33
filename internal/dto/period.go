package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// CreatePeriodRequest defines the data needed to create a period.
type CreatePeriodRequest struct {
	Name         string `json:"name" binding:"required"`
	StartDate    string `json:"startDate" binding:"required,date"`
	EndDate      string `json:"endDate" binding:"required,date"`
	FiscalYearID string `json:"fiscalYearID"`
}

// ToInput converts the request to a period input.
func (r CreatePeriodRequest) ToInput() (domain.PeriodInput, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return domain.PeriodInput{}, err
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return domain.PeriodInput{}, err
	}
	return domain.PeriodInput{Name: r.Name, StartDate: start, EndDate: end, FiscalYearID: r.FiscalYearID}, nil
}

// UpdatePeriodRequest is a partial update; omitted fields are unchanged.
type UpdatePeriodRequest struct {
	Name         *string `json:"name"`
	StartDate    *string `json:"startDate" binding:"omitempty,date"`
	EndDate      *string `json:"endDate" binding:"omitempty,date"`
	FiscalYearID *string `json:"fiscalYearID"`
}

// ToPatch converts the request to a period patch.
func (r UpdatePeriodRequest) ToPatch() (domain.PeriodPatch, error) {
	patch := domain.PeriodPatch{Name: r.Name, FiscalYearID: r.FiscalYearID}
	var err error
	if patch.StartDate, err = parseOptionalDate(r.StartDate); err != nil {
		return patch, err
	}
	if patch.EndDate, err = parseOptionalDate(r.EndDate); err != nil {
		return patch, err
	}
	return patch, nil
}

// ListPeriodsParams defines the query parameters for listing periods.
type ListPeriodsParams struct {
	Search     string `form:"search"`
	FiscalYear string `form:"fiscalYear"`
}

// ToFilter converts the query to a period filter.
func (p ListPeriodsParams) ToFilter() domain.PeriodFilter {
	return domain.PeriodFilter{Search: p.Search, FiscalYear: p.FiscalYear}
}

// PeriodResponse defines the data returned for a period.
type PeriodResponse struct {
	PeriodID      string     `json:"periodID"`
	Name          string     `json:"name"`
	StartDate     string     `json:"startDate"`
	EndDate       string     `json:"endDate"`
	IsClosed      bool       `json:"isClosed"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
	FiscalYearID  string     `json:"fiscalYearID"`
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedBy     string     `json:"createdBy"`
	LastUpdatedAt time.Time  `json:"lastUpdatedAt"`
	LastUpdatedBy string     `json:"lastUpdatedBy"`
}

// ListPeriodsResponse wraps a list of periods.
type ListPeriodsResponse struct {
	Periods []PeriodResponse `json:"periods"`
}

// ToPeriodResponse converts a domain.AccountingPeriod to PeriodResponse DTO.
func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:      p.PeriodID,
		Name:          p.Name,
		StartDate:     formatDate(p.StartDate),
		EndDate:       formatDate(p.EndDate),
		IsClosed:      p.IsClosed,
		ClosedAt:      p.ClosedAt,
		FiscalYearID:  p.FiscalYearID,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		LastUpdatedAt: p.LastUpdatedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
}

// ToListPeriodsResponse converts a list of periods.
func ToListPeriodsResponse(periods []domain.AccountingPeriod) ListPeriodsResponse {
	out := ListPeriodsResponse{Periods: make([]PeriodResponse, len(periods))}
	for i := range periods {
		out.Periods[i] = ToPeriodResponse(&periods[i])
	}
	return out
}
