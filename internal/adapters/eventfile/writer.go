package eventfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/firstlevel/internal/domain/model"
)

// Write emits records as an event table. The weight column is written
// only when at least one record carries a weight; missing weights are
// written as "n/a".
func Write(w io.Writer, recs []model.TrialRecord, opts ...Option) error {
	o := newOptions(opts)

	withWeight := false
	for _, r := range recs {
		if r.HasWeight() {
			withWeight = true
			break
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = o.delimiter

	header := []string{o.columns.Onset, o.columns.Duration, o.columns.TrialType}
	if withWeight {
		header = append(header, o.columns.Weight)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range recs {
		row[0] = formatFloat(r.Onset)
		row[1] = formatFloat(r.Duration)
		row[2] = r.TrialType
		if withWeight {
			row[3] = nullCell
			if r.HasWeight() {
				row[3] = formatFloat(*r.Weight)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush event table: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
