package patient

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel kinds for validation errors. Use errors.Is against a *ValidationError.
var (
	ErrMissingPayload = errors.New("missing payload")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrOutOfRange     = errors.New("out of range")
)

// MissingPayloadMessage is the user-facing reason reported for empty input.
const MissingPayloadMessage = "No data received. Please submit patient measurements as a JSON object."

// ValidationError explains why a payload was rejected.
type ValidationError struct {
	Kind  error
	Field string
	Value float64
	Range Range
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrMissingPayload:
		return MissingPayloadMessage
	case ErrTypeMismatch:
		return fmt.Sprintf("Invalid value for %s: must be a number", e.Field)
	case ErrOutOfRange:
		return fmt.Sprintf("%s must be in range %s, got %s", e.Field, e.Range, formatNumber(e.Value))
	default:
		return "invalid input"
	}
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// KindName returns a short label for the error kind, suitable for metrics.
func (e *ValidationError) KindName() string {
	switch e.Kind {
	case ErrMissingPayload:
		return "missing_payload"
	case ErrTypeMismatch:
		return "type_mismatch"
	case ErrOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

func missingPayload() *ValidationError { return &ValidationError{Kind: ErrMissingPayload} }

func typeMismatch(field string) *ValidationError {
	return &ValidationError{Kind: ErrTypeMismatch, Field: field}
}

func outOfRange(field string, v float64) *ValidationError {
	return &ValidationError{Kind: ErrOutOfRange, Field: field, Value: v, Range: Ranges[field]}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
