package model

import "fmt"

// Validation error codes.
const (
	CodeInvalidDate        = "INVALID_DATE"
	CodeUnknownParameter   = "UNKNOWN_PARAMETER"
	CodeDuplicateID        = "DUPLICATE_ID"
	CodeNotFound           = "NOT_FOUND"
	CodeEmptyChanges       = "EMPTY_CHANGES"
	CodeInvalidValue       = "INVALID_VALUE"
	CodeInvalidDocument    = "INVALID_DOCUMENT"
	CodeUnsupportedVersion = "UNSUPPORTED_VERSION"
)

// ValidationError rejects input before anything is mutated.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CalculationError aborts a run when a step produces a non-finite value.
type CalculationError struct {
	Period int
	Field  string
	Value  float64
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("invalid calculation in period %d: %s = %v", e.Period, e.Field, e.Value)
}
