package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySender   = errors.New("sender is empty")
	ErrSenderTooLong = errors.New("sender too long")
	ErrEmptyText     = errors.New("text is empty")
	ErrTextTooLong   = errors.New("text too long")

	// ErrStoreUnavailable wraps storage-layer outages so callers can tell
	// "store down" apart from "empty room".
	ErrStoreUnavailable = errors.New("message store unavailable")
)

// ValidationError marks a publish rejected before persistence. Nothing is
// stored and nothing is broadcast for such a message.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// IsValidation reports whether err originates from draft validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
