// Package eventfile reads and writes tab-separated event tables
// (onset, duration, trial_type and an optional weight column).
package eventfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/firstlevel/internal/domain/grouping"
	"github.com/okian/firstlevel/internal/domain/model"
	"github.com/okian/firstlevel/pkg/metrics"
)

const (
	nullCell       = "n/a"
	utf8BOM        = "\ufeff"
	ctxCheckStride = 1024
)

// ReadFile opens path and reads its trial records.
func ReadFile(ctx context.Context, path string, opts ...Option) ([]model.TrialRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event file: %w", err)
	}
	defer f.Close()

	recs, err := Read(ctx, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Read parses an event table with a header row. Blank lines and lines
// starting with '#' are skipped. A cell holding "n/a" in a required column
// counts as missing.
func Read(ctx context.Context, r io.Reader, opts ...Option) ([]model.TrialRecord, error) {
	o := newOptions(opts)

	cr := csv.NewReader(r)
	cr.Comma = o.delimiter
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadTable, err)
	}
	idx, err := locate(header, o.columns)
	if err != nil {
		return nil, err
	}

	var out []model.TrialRecord
	for n := 0; ; n++ {
		if n%ctxCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("read event table: %w", err)
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadTable, err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := idx.parse(row, line)
		if err != nil {
			metrics.RecordRecordRejected(rejectReason(err))
			return nil, err
		}
		out = append(out, rec)
	}

	metrics.RecordRecordsParsed(len(out))
	return out, nil
}

// columnIndex holds header positions; weight is -1 when absent.
type columnIndex struct {
	names    Columns
	onset    int
	duration int
	label    int
	weight   int
}

func locate(header []string, c Columns) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	idx := columnIndex{names: c, weight: -1}
	for _, req := range []struct {
		name string
		dst  *int
	}{
		{c.Onset, &idx.onset},
		{c.Duration, &idx.duration},
		{c.TrialType, &idx.label},
	} {
		i, ok := pos[req.name]
		if !ok {
			return columnIndex{}, fmt.Errorf("%w: %q", ErrMissingColumn, req.name)
		}
		*req.dst = i
	}
	if i, ok := pos[c.Weight]; ok {
		idx.weight = i
	}
	return idx, nil
}

func (idx columnIndex) parse(row []string, line int) (model.TrialRecord, error) {
	var rec model.TrialRecord
	var err error

	label, ok := cell(row, idx.label)
	if !ok {
		return rec, &LineError{Line: line, Column: idx.names.TrialType, Value: label, Err: grouping.ErrMalformedRecord}
	}
	rec.TrialType = label

	if rec.Onset, err = number(row, idx.onset, line, idx.names.Onset); err != nil {
		return rec, err
	}
	if rec.Duration, err = number(row, idx.duration, line, idx.names.Duration); err != nil {
		return rec, err
	}

	if idx.weight >= 0 {
		if raw, ok := cell(row, idx.weight); ok {
			w, perr := strconv.ParseFloat(raw, 64)
			if perr != nil || math.IsNaN(w) || math.IsInf(w, 0) {
				return rec, &LineError{Line: line, Column: idx.names.Weight, Value: raw, Err: grouping.ErrNotNumeric}
			}
			rec.Weight = &w
		}
	}
	return rec, nil
}

// cell returns the trimmed value at i and whether it is present.
func cell(row []string, i int) (string, bool) {
	if i >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[i])
	if v == "" || strings.EqualFold(v, nullCell) {
		return v, false
	}
	return v, true
}

func number(row []string, i, line int, column string) (float64, error) {
	raw, ok := cell(row, i)
	if !ok {
		return 0, &LineError{Line: line, Column: column, Value: raw, Err: grouping.ErrMalformedRecord}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &LineError{Line: line, Column: column, Value: raw, Err: grouping.ErrNotNumeric}
	}
	if v < 0 {
		return 0, &LineError{Line: line, Column: column, Value: raw, Err: grouping.ErrMalformedRecord}
	}
	return v, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, grouping.ErrNotNumeric):
		return "not_numeric"
	case errors.Is(err, grouping.ErrMalformedRecord):
		return "malformed"
	default:
		return "unknown"
	}
}
