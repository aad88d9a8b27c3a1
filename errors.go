package pagecursor

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is reported when an operation is started while another network
	// call of the same cursor is still in flight.
	ErrBusy = errors.New("cursor is busy")
	// ErrOutOfRange is reported by Goto when the requested global offset has
	// no record.
	ErrOutOfRange = errors.New("offset out of range")
	// ErrNotFound is returned by collections when the addressed record does
	// not exist.
	ErrNotFound = errors.New("record not found")
)

// ValidationError describes malformed caller input. It is always detected
// before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}

	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// TransportError wraps any failure reported by a RemoteCollection.
type TransportError struct {
	// Op is the collection operation that failed: list, create, replace or remove.
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newTransportError(op string, err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}

	return &TransportError{Op: op, Err: err}
}

var (
	_ error = (*ValidationError)(nil)
	_ error = (*TransportError)(nil)
)
