package domain

import (
	"errors"
	"time"
)

// AuditOutcome is the result of a mutating operation.
type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "success"
	OutcomeFailure AuditOutcome = "failure"
)

// Audited operation names.
const (
	OpValidateEntry  = "validate_entry"
	OpCreateEntry    = "create_entry"
	OpUpdateEntry    = "update_entry"
	OpPostEntry      = "post_entry"
	OpApproveEntry   = "approve_entry"
	OpRejectEntry    = "reject_entry"
	OpReverseEntry   = "reverse_entry"
	OpGenerateEntry  = "generate_entry"
	OpCreatePeriod   = "create_period"
	OpUpdatePeriod   = "update_period"
	OpClosePeriod    = "close_period"
	OpReopenPeriod   = "reopen_period"
	OpDeletePeriod   = "delete_period"
	OpUpdateSettings = "update_settings"
	OpCreateAccount  = "create_account"
	OpSeedChart      = "seed_chart"
)

// AuditDetail is one structured reason attached to a failed operation.
type AuditDetail struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// AuditEvent is what the core reports for every mutating call. Rendering it
// is up to the sink.
type AuditEvent struct {
	ID         string        `json:"id"`
	Operation  string        `json:"operation"`
	Outcome    AuditOutcome  `json:"outcome"`
	EntityID   string        `json:"entityID,omitempty"`
	Actor      string        `json:"actor,omitempty"`
	Errors     []AuditDetail `json:"errors,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// AuditDetailsFrom converts a business error into audit details. Errors
// without structure become a single detail carrying the message.
func AuditDetailsFrom(err error) []AuditDetail {
	if err == nil {
		return nil
	}
	var (
		ve *EntryValidationError
		ge *GenerationError
		pe *PeriodError
		ee *EntryError
	)
	switch {
	case errors.As(err, &ve):
		return detailsFromViolations(ve.Result.Errors)
	case errors.As(err, &ge):
		out := []AuditDetail{{Kind: string(ge.Kind), Message: ge.Error()}}
		return append(out, detailsFromViolations(ge.Violations)...)
	case errors.As(err, &pe):
		return []AuditDetail{{Kind: string(pe.Kind), Field: pe.ConflictingID, Message: pe.Error()}}
	case errors.As(err, &ee):
		return []AuditDetail{{Kind: string(ee.Kind), Field: ee.EntryID, Message: ee.Error()}}
	}
	return []AuditDetail{{Kind: "Error", Message: err.Error()}}
}

func detailsFromViolations(vs []ValidationError) []AuditDetail {
	out := make([]AuditDetail, len(vs))
	for i, v := range vs {
		out[i] = AuditDetail{Kind: string(v.Kind), Field: v.Field, Message: v.Message}
	}
	return out
}
