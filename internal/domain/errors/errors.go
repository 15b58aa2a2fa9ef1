// Package errors holds the sentinel errors shared by both services. Use
// cases wrap them with %w; the HTTP layer and the message consumer match
// them with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// Orders side.
var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidPrice           = errors.New("price must be positive")
)

// Payments side. ErrPaymentAlreadyExists means the order was charged by an
// earlier delivery.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrOptimisticLockFailed = errors.New("optimistic lock conflict")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAlreadyExists = errors.New("payment already exists for order")
)

// Broker messages that can never succeed. Consumers dead-letter these
// instead of requeueing.
var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownEventType = errors.New("unknown event type")
)

// ErrValidationFailed is the target every *ValidationError unwraps to.
var ErrValidationFailed = errors.New("validation failed")

// DomainError carries a stable machine code next to a human message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *DomainError) Unwrap() error { return e.Err }

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return "validation failed for field " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// Malformed marks a payload that failed to decode as poison.
func Malformed(what string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedMessage, what, cause)
	}
	return fmt.Errorf("%w: %s", ErrMalformedMessage, what)
}
