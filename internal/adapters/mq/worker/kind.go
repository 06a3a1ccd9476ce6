package worker

import (
	"context"
	"errors"

	"github.com/okian/firstlevel/internal/adapters/eventfile"
	"github.com/okian/firstlevel/internal/domain/grouping"
)

// Failure kinds stored on failed designs and used as metric labels.
const (
	KindMalformed     = "malformed"
	KindNotNumeric    = "not_numeric"
	KindMissingColumn = "missing_column"
	KindEmptyTable    = "empty_table"
	KindCancelled     = "cancelled"
	KindInternal      = "internal"
)

// FailureKind classifies a build error.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, grouping.ErrNotNumeric):
		return KindNotNumeric
	case errors.Is(err, grouping.ErrMalformedRecord), errors.Is(err, eventfile.ErrReadTable):
		return KindMalformed
	case errors.Is(err, eventfile.ErrMissingColumn):
		return KindMissingColumn
	case errors.Is(err, eventfile.ErrEmptyTable):
		return KindEmptyTable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInternal
	}
}
