package service

import (
	"errors"
	"fmt"
)

var (
	ErrAccessDenied      = errors.New("access denied")
	ErrValidation        = errors.New("validation failed")
	ErrNotEligible       = errors.New("engagement is not eligible")
	ErrInvalidTransition = errors.New("invalid bill status transition")
	ErrInvoiceMismatch   = errors.New("stored totals do not match line items")
	ErrNoActiveTimer     = errors.New("no active timer")
)

// BillingError is returned when a billing write fails. Nothing it describes
// was applied.
type BillingError struct {
	Op           string
	EngagementID string
	Err          error
}

func (e *BillingError) Error() string {
	if e.EngagementID == "" {
		return fmt.Sprintf("billing: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("billing: %s failed for engagement %s: %v", e.Op, e.EngagementID, e.Err)
}

func (e *BillingError) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
