package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/middleware"
)

// errorResponse is the body of every failed request. Kind and the detail
// fields are set for business-rule rejections.
type errorResponse struct {
	Error      string                   `json:"error"`
	Kind       domain.ErrorKind         `json:"kind,omitempty"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
	Generation *domain.GenerationError  `json:"generation,omitempty"`
	Period     *domain.PeriodError      `json:"period,omitempty"`
	Entry      *domain.EntryError       `json:"entry,omitempty"`
}

// statusFor maps an error to its HTTP status through the apperrors sentinels.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Server errors are logged and replaced by
// fallback so internals do not leak.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, errorResponse{Error: fallback})
		return
	}

	resp := errorResponse{Error: err.Error()}
	var (
		validationErr *domain.EntryValidationError
		generationErr *domain.GenerationError
		periodErr     *domain.PeriodError
		entryErr      *domain.EntryError
	)
	switch {
	case errors.As(err, &validationErr):
		resp.Validation = &validationErr.Result
	case errors.As(err, &generationErr):
		resp.Kind = generationErr.Kind
		resp.Generation = generationErr
	case errors.As(err, &periodErr):
		resp.Kind = periodErr.Kind
		resp.Period = periodErr
	case errors.As(err, &entryErr):
		resp.Kind = entryErr.Kind
		resp.Entry = entryErr
	}
	logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	c.JSON(status, resp)
}

// respondBindError reports a malformed request body or query.
func respondBindError(c *gin.Context, err error, what string) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid " + what + ": " + err.Error()})
}
