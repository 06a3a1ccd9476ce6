// Package model contains domain models passed between layers.
package model

// TrialRecord is one row of an event table.
type TrialRecord struct {
	Onset     float64  // trial start, seconds or scans
	Duration  float64  // trial length, same unit as Onset
	TrialType string   // condition label
	Weight    *float64 // optional amplitude modifier; nil when the column is absent
}

// HasWeight reports whether the record carries an amplitude value.
func (r TrialRecord) HasWeight() bool {
	return r.Weight != nil
}
