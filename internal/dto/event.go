package dto

import (
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// AutomaticEntryRequest describes a business event to book. Which of the
// party fields apply depends on EventType.
type AutomaticEntryRequest struct {
	EventType     string          `json:"eventType" binding:"required"`
	Date          string          `json:"date" binding:"required,date"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes"`
	CustomerName  string          `json:"customerName"`
	VendorName    string          `json:"vendorName"`
	InvoiceNumber string          `json:"invoiceNumber"`
	PaymentMethod string          `json:"paymentMethod"`
}

// ToPayload converts the request fields into an event payload. The event
// type is left to the generator, which rejects tags without a template.
func (r AutomaticEntryRequest) ToPayload() (domain.EventPayload, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return domain.EventPayload{}, err
	}
	amount, err := toMoney("amount", r.Amount)
	if err != nil {
		return domain.EventPayload{}, err
	}
	return domain.EventPayload{
		Date:          date,
		Amount:        amount,
		Notes:         r.Notes,
		CustomerName:  r.CustomerName,
		VendorName:    r.VendorName,
		InvoiceNumber: r.InvoiceNumber,
		PaymentMethod: r.PaymentMethod,
	}, nil
}

// EventTypesResponse lists the event types that have a template.
type EventTypesResponse struct {
	EventTypes []domain.EventKind `json:"eventTypes"`
}
