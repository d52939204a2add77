package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	ErrEventIDOverflow = errors.New("event_id_overflow")
	ErrOrderIDOverflow = errors.New("order_id_overflow")
)

// ValidationError rejects a single malformed instruction. The run
// continues; only the offending instruction is dropped.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvariantError reports an internal bookkeeping inconsistency: an
// expected removal that found nothing, time flowing backward, an id
// counter overflow. It is always fatal — the run loop aborts on it,
// because continuing on a corrupted book produces meaningless results.
type InvariantError struct {
	Op      string
	Message string
	Err     error
}

func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// Invariantf builds an InvariantError for the given operation.
func Invariantf(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsInvariant reports whether err is (or wraps) an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
