package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// EntryLineRequest is one line of a journal entry request. Exactly one of
// Debit or Credit is expected to be positive; the validator reports otherwise.
type EntryLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// EntryRequest is the body of create, update and validate calls.
type EntryRequest struct {
	Date        string             `json:"date" binding:"required,date"`
	Description string             `json:"description"`
	Lines       []EntryLineRequest `json:"lines" binding:"dive"`
}

// ToInput converts the request to the domain input.
func (r EntryRequest) ToInput() (domain.EntryInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return domain.EntryInput{}, err
	}
	in := domain.EntryInput{
		Date:        date,
		Description: r.Description,
		Lines:       make([]domain.EntryLineInput, len(r.Lines)),
	}
	for i, l := range r.Lines {
		debit, err := toMoney(fmt.Sprintf("lines[%d].debit", i), l.Debit)
		if err != nil {
			return domain.EntryInput{}, err
		}
		credit, err := toMoney(fmt.Sprintf("lines[%d].credit", i), l.Credit)
		if err != nil {
			return domain.EntryInput{}, err
		}
		in.Lines[i] = domain.EntryLineInput{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       debit,
			Credit:      credit,
		}
	}
	return in, nil
}

// ReverseEntryRequest optionally dates the reversal.
type ReverseEntryRequest struct {
	Date *string `json:"date" binding:"omitempty,date"`
}

// ReversalDate returns the requested date, or nil to date the reversal today.
func (r ReverseEntryRequest) ReversalDate() (*time.Time, error) {
	return parseOptionalDate(r.Date)
}

// ListEntriesParams defines the query parameters for listing entries.
type ListEntriesParams struct {
	Status    string `form:"status" binding:"omitempty,oneof=DRAFT POSTED APPROVED REJECTED"`
	From      string `form:"from" binding:"omitempty,date"`
	To        string `form:"to" binding:"omitempty,date"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ToServiceParams converts the query to service parameters.
func (p ListEntriesParams) ToServiceParams() (portssvc.ListEntriesParams, error) {
	out := portssvc.ListEntriesParams{
		Filter:    domain.EntryFilter{Status: domain.JournalStatus(p.Status)},
		Limit:     p.Limit,
		NextToken: p.NextToken,
	}
	var err error
	if out.Filter.From, err = parseOptionalDate(&p.From); err != nil {
		return out, err
	}
	if out.Filter.To, err = parseOptionalDate(&p.To); err != nil {
		return out, err
	}
	if out.Filter.From != nil && out.Filter.To != nil && out.Filter.To.Before(*out.Filter.From) {
		return out, fmt.Errorf("%w: from must not be after to", apperrors.ErrValidation)
	}
	return out, nil
}

// EntryLineResponse defines the data returned for an entry line.
type EntryLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID       string              `json:"entryID"`
	Number        string              `json:"number"`
	Date          string              `json:"date"`
	Description   string              `json:"description"`
	Lines         []EntryLineResponse `json:"lines"`
	TotalDebit    decimal.Decimal     `json:"totalDebit"`
	TotalCredit   decimal.Decimal     `json:"totalCredit"`
	Status        string              `json:"status"`
	Source        string              `json:"source"`
	EventType     string              `json:"eventType,omitempty"`
	ReversalOf    string              `json:"reversalOf,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy string              `json:"lastUpdatedBy"`
}

// ListEntriesResponse is a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken string          `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:       e.EntryID,
		Number:        e.Number,
		Date:          formatDate(e.Date),
		Description:   e.Description,
		Lines:         make([]EntryLineResponse, len(e.Lines)),
		TotalDebit:    e.TotalDebit.Decimal(),
		TotalCredit:   e.TotalCredit.Decimal(),
		Status:        string(e.Status),
		Source:        string(e.Source),
		EventType:     string(e.EventKind),
		ReversalOf:    e.ReversalOf,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		LastUpdatedAt: e.LastUpdatedAt,
		LastUpdatedBy: e.LastUpdatedBy,
	}
	for i, l := range e.Lines {
		resp.Lines[i] = EntryLineResponse{
			LineID:      l.LineID,
			AccountID:   l.AccountID,
			AccountName: l.AccountName,
			Description: l.Description,
			Debit:       l.Debit.Decimal(),
			Credit:      l.Credit.Decimal(),
		}
	}
	return resp
}

// ToListEntriesResponse converts a page of entries.
func ToListEntriesResponse(page *domain.EntryPage) ListEntriesResponse {
	out := ListEntriesResponse{Entries: make([]EntryResponse, len(page.Entries)), NextToken: page.NextToken}
	for i := range page.Entries {
		out.Entries[i] = ToEntryResponse(&page.Entries[i])
	}
	return out
}
