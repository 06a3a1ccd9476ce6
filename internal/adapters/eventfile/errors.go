package eventfile

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyTable    = errors.New("event table has no header")
	ErrReadTable     = errors.New("read event table failed")
)

// LineError locates a rejected cell in the source table.
type LineError struct {
	Line   int    // 1-based line number in the source
	Column string // column name from the header
	Value  string // raw cell text
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: column %q: value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
