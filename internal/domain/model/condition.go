// Package model contains domain models passed between layers.
package model

import "encoding/json"

// ConditionModel is the per-condition design handed to a first-level
// modeling step. It is immutable: accessors return copies.
type ConditionModel struct {
	conditions []string
	onsets     [][]float64
	durations  [][]float64
}

// NewConditionModel builds a model from aligned slices. The slices are
// copied. Callers must pass aligned input; the grouping package is the
// normal constructor.
func NewConditionModel(conditions []string, onsets, durations [][]float64) ConditionModel {
	return ConditionModel{
		conditions: copyStrings(conditions),
		onsets:     copyMatrix(onsets),
		durations:  copyMatrix(durations),
	}
}

// Len returns the number of conditions.
func (m ConditionModel) Len() int {
	return len(m.conditions)
}

// Conditions returns condition labels in first-appearance order.
func (m ConditionModel) Conditions() []string {
	return copyStrings(m.conditions)
}

// Onsets returns per-condition onset lists aligned with Conditions.
func (m ConditionModel) Onsets() [][]float64 {
	return copyMatrix(m.onsets)
}

// Durations returns per-condition duration lists aligned with Conditions.
func (m ConditionModel) Durations() [][]float64 {
	return copyMatrix(m.durations)
}

// TrialCount returns the total number of trials across all conditions.
func (m ConditionModel) TrialCount() int {
	n := 0
	for _, o := range m.onsets {
		n += len(o)
	}
	return n
}

// Flatten rebuilds trial records condition by condition, keeping the
// within-condition order. Weights are not part of the model and are nil.
func (m ConditionModel) Flatten() []TrialRecord {
	out := make([]TrialRecord, 0, m.TrialCount())
	for i, label := range m.conditions {
		for j, onset := range m.onsets[i] {
			out = append(out, TrialRecord{
				Onset:     onset,
				Duration:  m.durations[i][j],
				TrialType: label,
			})
		}
	}
	return out
}

// bunch is the wire shape expected by first-level modeling interfaces.
// Regressors are never populated here and stay omitted.
type bunch struct {
	Conditions     []string    `json:"conditions"`
	Onsets         [][]float64 `json:"onsets"`
	Durations      [][]float64 `json:"durations"`
	Regressors     [][]float64 `json:"regressors,omitempty"`
	RegressorNames []string    `json:"regressor_names,omitempty"`
}

// MarshalJSON encodes the model as {"conditions","onsets","durations"}.
func (m ConditionModel) MarshalJSON() ([]byte, error) {
	b := bunch{
		Conditions: m.conditions,
		Onsets:     m.onsets,
		Durations:  m.durations,
	}
	if b.Conditions == nil {
		b.Conditions = []string{}
	}
	if b.Onsets == nil {
		b.Onsets = [][]float64{}
	}
	if b.Durations == nil {
		b.Durations = [][]float64{}
	}
	return json.Marshal(b)
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (m *ConditionModel) UnmarshalJSON(data []byte) error {
	var b bunch
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*m = NewConditionModel(b.Conditions, b.Onsets, b.Durations)
	return nil
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyMatrix(in [][]float64) [][]float64 {
	out := make([][]float64, len(in))
	for i, row := range in {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}
