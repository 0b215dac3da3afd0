package fio

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is matched by every MissingFieldError.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidAmount is returned when a payment amount is not a positive finite number.
	ErrInvalidAmount = errors.New("payment amount must be a positive number")

	// ErrTransport is matched by every TransportError.
	ErrTransport = errors.New("transport failure")

	// ErrAccessFault marks a bank response that does not have the expected shape.
	ErrAccessFault = errors.New("unexpected response shape")

	// ErrInvalidParameter marks a caller-supplied parameter the node cannot act on
	// (unknown operation, payment source or date).
	ErrInvalidParameter = errors.New("invalid parameter")
)

// MissingFieldError names the first required payment field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("payment data is missing required field: %s", e.Field)
}

// Is reports ErrMissingField as a match so callers can use errors.Is.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// TransportError wraps a failed call to the bank API. Op is the
// human-readable operation, e.g. "failed to get balance".
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransport as a match so callers can use errors.Is.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func accessFault(path string) error {
	return fmt.Errorf("%w: %s is missing", ErrAccessFault, path)
}
