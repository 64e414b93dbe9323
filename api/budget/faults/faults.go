package faults

import (
	"errors"
	"fmt"
)

// ConfigurationError marks a request that must never reach a write endpoint:
// a missing or non-positive ceiling/area id, or a ceiling the server does not
// know. Misattributed spend corrupts downstream ledgers, so these are fatal.
type ConfigurationError struct {
	Field string
	Value int64
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("configuration error: %s (%s=%d)", e.Msg, e.Field, e.Value)
	}
	return fmt.Sprintf("configuration error: invalid %s=%d", e.Field, e.Value)
}

func NewConfigurationError(field string, value int64, msg string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Msg: msg}
}

// ValidationError is recoverable: the caller fixes the input and resubmits.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation error: " + e.Msg }

func NewValidationError(msg string) *ValidationError { return &ValidationError{Msg: msg} }

// ErrBudgetExceeded is returned when a submission would overrun the ceiling
// and the caller has not confirmed. Not fatal; resubmitting with explicit
// confirmation proceeds.
var ErrBudgetExceeded = errors.New("pending requisition exceeds available budget; confirmation required")

// FailedUpsert records one tolerated justification failure.
type FailedUpsert struct {
	PartidaID int64
	AreaID    int64
	CeilingID int64
	Reason    string
}

// PartialFailure carries the non-critical justification upserts that failed.
// The requisition batch still proceeds; the identifiers support manual
// reconciliation.
type PartialFailure struct {
	Failed []FailedUpsert
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%d justification upsert(s) failed", len(e.Failed))
}

// ServerError wraps a database/collaborator failure whose message must reach
// the caller verbatim for manual resubmission. No retry policy exists.
type ServerError struct {
	Op  string
	Err error
}

func (e *ServerError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *ServerError) Unwrap() error { return e.Err }

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
