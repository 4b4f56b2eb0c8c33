package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
)

// ErrorKind classifies a business-rule rejection.
type ErrorKind string

// Validation kinds.
const (
	KindUnbalanced         ErrorKind = "Unbalanced"
	KindMissingDescription ErrorKind = "MissingDescription"
	KindExceedsMaximum     ErrorKind = "ExceedsMaximum"
	KindTooFewLines        ErrorKind = "TooFewLines"
	KindInvalidLine        ErrorKind = "InvalidLine"
	KindBackdated          ErrorKind = "Backdated"
	KindDuplicate          ErrorKind = "Duplicate"
)

// Generation kinds.
const (
	KindUnknownEventType         ErrorKind = "UnknownEventType"
	KindUnsupportedPaymentMethod ErrorKind = "UnsupportedPaymentMethod"
	KindValidationFailed         ErrorKind = "ValidationFailed"
)

// Period kinds.
const (
	KindOverlap           ErrorKind = "Overlap"
	KindLaterPeriodClosed ErrorKind = "LaterPeriodClosed"
	KindPeriodClosed      ErrorKind = "PeriodClosed"
	KindInvalidRange      ErrorKind = "InvalidRange"
	KindNoOpenPeriod      ErrorKind = "NoOpenPeriod"
	KindNotFound          ErrorKind = "NotFound"
)

// Entry lifecycle kinds.
const (
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindApprovalRequired  ErrorKind = "ApprovalRequired"
	KindAlreadyReversed   ErrorKind = "AlreadyReversed"
)

// ValidationError is one violation found by the validator.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Field   string    `json:"field,omitempty"`
	Line    *int      `json:"line,omitempty"` // zero-based index into Lines
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets callers match validation failures with errors.Is.
func (e ValidationError) Unwrap() error { return apperrors.ErrValidation }

// ValidationResult is the outcome of validating an entry. Errors is never nil.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors"`
}

// Has reports whether the result contains a violation of kind.
func (r ValidationResult) Has(kind ErrorKind) bool {
	for _, e := range r.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Kinds lists violation kinds in order of detection.
func (r ValidationResult) Kinds() []ErrorKind {
	out := make([]ErrorKind, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Kind
	}
	return out
}

// Add appends a violation and marks the result invalid.
func (r *ValidationResult) Add(v ValidationError) {
	r.Errors = append(r.Errors, v)
	r.IsValid = false
}

// Err returns nil for a valid result and an *EntryValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &EntryValidationError{Result: r}
}

// EntryValidationError wraps a failed ValidationResult.
type EntryValidationError struct {
	Result ValidationResult
}

func (e *EntryValidationError) Error() string {
	msgs := make([]string, len(e.Result.Errors))
	for i, v := range e.Result.Errors {
		msgs[i] = v.Error()
	}
	return "journal entry is invalid: " + strings.Join(msgs, "; ")
}

func (e *EntryValidationError) Unwrap() error { return apperrors.ErrValidation }

// GenerationError is returned when the automatic generator refuses an event.
type GenerationError struct {
	Kind       ErrorKind         `json:"kind"`
	EventKind  EventKind         `json:"eventType,omitempty"`
	Detail     string            `json:"detail,omitempty"`
	Violations []ValidationError `json:"violations,omitempty"`
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case KindValidationFailed:
		msgs := make([]string, len(e.Violations))
		for i, v := range e.Violations {
			msgs[i] = v.Error()
		}
		return fmt.Sprintf("generated %s entry failed validation: %s", e.EventKind, strings.Join(msgs, "; "))
	default:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
		}
		return string(e.Kind)
	}
}

func (e *GenerationError) Unwrap() error { return apperrors.ErrValidation }

// PeriodError is a rejected period lifecycle operation.
type PeriodError struct {
	Kind          ErrorKind `json:"kind"`
	PeriodID      string    `json:"periodID,omitempty"`
	ConflictingID string    `json:"conflictingPeriodID,omitempty"`
	Detail        string    `json:"detail,omitempty"`
}

func (e *PeriodError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.PeriodID != "" {
		b.WriteString(" period=" + e.PeriodID)
	}
	if e.ConflictingID != "" {
		b.WriteString(" conflicting=" + e.ConflictingID)
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	return b.String()
}

func (e *PeriodError) Unwrap() error {
	switch e.Kind {
	case KindNotFound:
		return apperrors.ErrNotFound
	case KindInvalidRange:
		return apperrors.ErrValidation
	default:
		return apperrors.ErrConflict
	}
}

// EntryError is a rejected journal entry lifecycle operation.
type EntryError struct {
	Kind    ErrorKind `json:"kind"`
	EntryID string    `json:"entryID,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

func (e *EntryError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s entry=%s: %s", e.Kind, e.EntryID, e.Detail)
	}
	return fmt.Sprintf("%s entry=%s", e.Kind, e.EntryID)
}

func (e *EntryError) Unwrap() error {
	if e.Kind == KindNotFound {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrConflict
}
