package service

import (
	"errors"
	"fmt"
)

// ValidationError reports a rejected request: nothing was mutated and the
// message is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TimeoutError reports a polling loop that ran out of wait budget. It is
// fatal for the attempt but may still trigger the backup-URL fallback.
type TimeoutError struct {
	Operation string
	Waited    string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Waited)
}

func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// ErrRetryLimitReached rejects a retry action on a post whose budget is
// already spent.
var ErrRetryLimitReached = &ValidationError{Message: "Maximum retry limit reached"}
