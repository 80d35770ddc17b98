package domain

import (
	"errors"
	"fmt"
)

// ErrInvalid is the sentinel matched by errors.Is for all validation and
// state-precondition failures raised by domain methods. The concrete error
// carries a user-facing message.
var ErrInvalid = errors.New("invalid input")

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrInvalid }

// Invalidf builds a validation error with a user-facing message.
func Invalidf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}
