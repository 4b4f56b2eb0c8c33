package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventKind tags a business event that the generator knows how to book.
type EventKind string

const (
	EventSaleCash       EventKind = "sale_cash"
	EventPurchaseCash   EventKind = "purchase_cash"
	EventPaymentReceipt EventKind = "payment_receipt"
	EventVendorPayment  EventKind = "vendor_payment"
)

// AllEventKinds lists the kinds with a default template.
var AllEventKinds = []EventKind{EventSaleCash, EventPurchaseCash, EventPaymentReceipt, EventVendorPayment}

// ParseEventKind resolves an event type tag. Unknown tags return a
// GenerationError of kind UnknownEventType.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllEventKinds {
		if k == known {
			return k, nil
		}
	}
	return "", &GenerationError{
		Kind:      KindUnknownEventType,
		EventKind: EventKind(s),
		Detail:    fmt.Sprintf("no template for event type %q", s),
	}
}

// PaymentMethod selects the variable leg of receipt and payment templates.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentBank  PaymentMethod = "bank"
	PaymentCheck PaymentMethod = "check"
	PaymentCard  PaymentMethod = "card"
)

// ParsePaymentMethod normalises a method name. An empty name means cash.
func ParsePaymentMethod(s string) PaymentMethod {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "cash":
		return PaymentCash
	case "bank", "bank_transfer", "transfer":
		return PaymentBank
	case "check", "cheque":
		return PaymentCheck
	case "card", "credit_card", "debit_card":
		return PaymentCard
	}
	return PaymentMethod(s)
}

// BusinessEvent is the closed set of events the generator accepts. Only the
// event types declared in this package implement it.
type BusinessEvent interface {
	Kind() EventKind
	EventDate() time.Time
	EventAmount() Money
	isBusinessEvent()
}

// EventHeader carries the fields every event has.
type EventHeader struct {
	Date   time.Time
	Amount Money
	Notes  string
}

func (h EventHeader) EventDate() time.Time { return h.Date }
func (h EventHeader) EventAmount() Money   { return h.Amount }

// SaleCash is a sale settled in cash at the till.
type SaleCash struct {
	EventHeader
	CustomerName string
}

// PurchaseCash is a purchase of goods paid in cash.
type PurchaseCash struct {
	EventHeader
	VendorName string
}

// PaymentReceipt is money received from a customer against a receivable.
type PaymentReceipt struct {
	EventHeader
	CustomerName  string
	InvoiceNumber string
	PaymentMethod PaymentMethod
}

// VendorPayment is money paid to a vendor against a payable.
type VendorPayment struct {
	EventHeader
	VendorName    string
	InvoiceNumber string
	PaymentMethod PaymentMethod
}

func (SaleCash) Kind() EventKind       { return EventSaleCash }
func (PurchaseCash) Kind() EventKind   { return EventPurchaseCash }
func (PaymentReceipt) Kind() EventKind { return EventPaymentReceipt }
func (VendorPayment) Kind() EventKind  { return EventVendorPayment }

func (SaleCash) isBusinessEvent()       {}
func (PurchaseCash) isBusinessEvent()   {}
func (PaymentReceipt) isBusinessEvent() {}
func (VendorPayment) isBusinessEvent()  {}

// EventPayload is the untyped form of an event as received from callers.
type EventPayload struct {
	Date          time.Time
	Amount        Money
	Notes         string
	CustomerName  string
	VendorName    string
	InvoiceNumber string
	PaymentMethod string
}

// NewBusinessEvent turns an event type tag and payload into a typed event.
// Unknown tags return a GenerationError of kind UnknownEventType.
func NewBusinessEvent(kind string, p EventPayload) (BusinessEvent, error) {
	k, err := ParseEventKind(kind)
	if err != nil {
		return nil, err
	}
	h := EventHeader{Date: p.Date, Amount: p.Amount, Notes: p.Notes}
	switch k {
	case EventSaleCash:
		return SaleCash{EventHeader: h, CustomerName: p.CustomerName}, nil
	case EventPurchaseCash:
		return PurchaseCash{EventHeader: h, VendorName: p.VendorName}, nil
	case EventPaymentReceipt:
		return PaymentReceipt{
			EventHeader:   h,
			CustomerName:  p.CustomerName,
			InvoiceNumber: p.InvoiceNumber,
			PaymentMethod: ParsePaymentMethod(p.PaymentMethod),
		}, nil
	case EventVendorPayment:
		return VendorPayment{
			EventHeader:   h,
			VendorName:    p.VendorName,
			InvoiceNumber: p.InvoiceNumber,
			PaymentMethod: ParsePaymentMethod(p.PaymentMethod),
		}, nil
	}
	return nil, &GenerationError{Kind: KindUnknownEventType, EventKind: k}
}

// describeEvent builds the entry description for an event.
func describeEvent(evt BusinessEvent) string {
	var desc string
	switch e := evt.(type) {
	case SaleCash:
		desc = "Cash sale"
		if e.CustomerName != "" {
			desc += " to " + e.CustomerName
		}
		desc = withNotes(desc, e.Notes)
	case PurchaseCash:
		desc = "Cash purchase"
		if e.VendorName != "" {
			desc += " from " + e.VendorName
		}
		desc = withNotes(desc, e.Notes)
	case PaymentReceipt:
		desc = "Payment received from " + partyOrUnknown(e.CustomerName)
		if e.InvoiceNumber != "" {
			desc += " for invoice " + e.InvoiceNumber
		}
		desc = withNotes(desc, e.Notes)
	case VendorPayment:
		desc = "Payment to " + partyOrUnknown(e.VendorName)
		if e.InvoiceNumber != "" {
			desc += " for invoice " + e.InvoiceNumber
		}
		desc = withNotes(desc, e.Notes)
	}
	return desc
}

func partyOrUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return "unknown party"
	}
	return name
}

func withNotes(desc, notes string) string {
	if strings.TrimSpace(notes) == "" {
		return desc
	}
	return desc + " - " + notes
}

// paymentMethodOf returns the payment method carried by evt, if any.
func paymentMethodOf(evt BusinessEvent) PaymentMethod {
	switch e := evt.(type) {
	case PaymentReceipt:
		return e.PaymentMethod
	case VendorPayment:
		return e.PaymentMethod
	}
	return ""
}
