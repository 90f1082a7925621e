package booking

import (
	"errors"
	"fmt"
)

// Code classifies a booking/payment failure for callers.
type Code string

const (
	CodeValidation             Code = "ValidationError"
	CodeSlotUnavailable        Code = "SlotUnavailable"
	CodeInvalidTransition      Code = "InvalidTransition"
	CodePaymentFailed          Code = "PaymentFailed"
	CodeConcurrentModification Code = "ConcurrentModification"
	CodeNotFound               Code = "NotFound"
	CodeUnauthorized           Code = "Unauthorized"
)

// Error is the typed error surfaced by the booking core.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == code
}
