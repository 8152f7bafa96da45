package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across package boundaries.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotEligible = errors.New("not eligible")
	ErrComputation = errors.New("computation error")
)

// ValidationError reports an input outside its allowed domain. It is returned
// before any computation runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError with a formatted reason.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotEligibleError carries a statutory ineligibility outcome for callers
// that need an error value (the projector). The resolver itself reports
// ineligibility through BenefitFactorResult.
type NotEligibleError struct {
	Result BenefitFactorResult
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("not eligible: %s", e.Result.Reason)
}

func (e *NotEligibleError) Unwrap() error { return ErrNotEligible }

// ComputationError signals a violated internal invariant, usually a broken
// rule table. The single calculation is aborted; nothing is clamped.
type ComputationError struct {
	Stage  string
	Detail string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation error in %s: %s", e.Stage, e.Detail)
}

func (e *ComputationError) Unwrap() error { return ErrComputation }

// Broken builds a ComputationError with a formatted detail.
func Broken(stage, format string, args ...any) error {
	return &ComputationError{Stage: stage, Detail: fmt.Sprintf(format, args...)}
}
