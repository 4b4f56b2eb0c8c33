package dto

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// RegisterValidators adds the custom binding tags used by the request types
// to gin's validator engine. It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("date", validateDate); err != nil {
		return fmt.Errorf("register date validator: %w", err)
	}
	return nil
}

// validateDate accepts empty strings; pair it with required when needed.
func validateDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}

// ParseDate parses a calendar date in the wire format.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", apperrors.ErrValidation, s)
	}
	return t, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toMoney converts a request amount into minor units.
func toMoney(field string, d decimal.Decimal) (domain.Money, error) {
	m, err := domain.MoneyFromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", apperrors.ErrValidation, field, err)
	}
	return m, nil
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
