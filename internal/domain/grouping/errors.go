package grouping

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrMalformedRecord marks a record missing a required field.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrNotNumeric marks an onset or duration that is not a finite number.
	ErrNotNumeric = errors.New("value is not numeric")
)

// RecordError locates a rejected record in the input sequence.
type RecordError struct {
	Index int    // zero-based position in the input
	Field string // onset, duration or trial_type
	Err   error  // ErrMalformedRecord or ErrNotNumeric
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
