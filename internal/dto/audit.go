package dto

import "github.com/SscSPs/ledger_core/internal/core/domain"

// ListAuditEventsParams defines the query parameters for recent audit events.
type ListAuditEventsParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// ListAuditEventsResponse wraps recent audit events, newest first.
type ListAuditEventsResponse struct {
	Events []domain.AuditEvent `json:"events"`
}
