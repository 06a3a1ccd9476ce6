// Package grouping turns a flat event table into per-condition onset and
// duration lists.
//
// Conditions are emitted in the order their first record appears and are
// never re-sorted. Within a condition, onsets keep their input order.
package grouping

import (
	"math"

	"github.com/okian/firstlevel/internal/domain/model"
)

// Field names reported in RecordError.
const (
	FieldOnset     = "onset"
	FieldDuration  = "duration"
	FieldTrialType = "trial_type"
)

// accumulator collects the trials of one condition in input order.
type accumulator struct {
	onsets    []float64
	durations []float64
}

// Group builds a ConditionModel in a single pass over records.
// It returns the zero model and a *RecordError on the first bad record.
func Group(records []model.TrialRecord) (model.ConditionModel, error) {
	order := make([]string, 0)
	acc := make(map[string]*accumulator)

	for i, rec := range records {
		if err := validate(i, rec); err != nil {
			return model.ConditionModel{}, err
		}
		a, ok := acc[rec.TrialType]
		if !ok {
			a = &accumulator{}
			acc[rec.TrialType] = a
			order = append(order, rec.TrialType)
		}
		a.onsets = append(a.onsets, rec.Onset)
		a.durations = append(a.durations, rec.Duration)
	}

	onsets := make([][]float64, len(order))
	durations := make([][]float64, len(order))
	for i, label := range order {
		onsets[i] = acc[label].onsets
		durations[i] = acc[label].durations
	}
	return model.NewConditionModel(order, onsets, durations), nil
}

func validate(i int, rec model.TrialRecord) error {
	switch {
	case rec.TrialType == "":
		return &RecordError{Index: i, Field: FieldTrialType, Err: ErrMalformedRecord}
	case !finite(rec.Onset):
		return &RecordError{Index: i, Field: FieldOnset, Err: ErrNotNumeric}
	case !finite(rec.Duration):
		return &RecordError{Index: i, Field: FieldDuration, Err: ErrNotNumeric}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
