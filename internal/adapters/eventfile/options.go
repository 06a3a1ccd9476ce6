package eventfile

import "unicode/utf8"

// Default column names of a BIDS-style events.tsv.
const (
	DefaultOnsetColumn     = "onset"
	DefaultDurationColumn  = "duration"
	DefaultTrialTypeColumn = "trial_type"
	DefaultWeightColumn    = "weight"
	DefaultDelimiter       = '\t'
)

// Columns maps table headers onto trial record fields.
type Columns struct {
	Onset     string
	Duration  string
	TrialType string
	Weight    string // optional; ignored when absent from the header
}

type options struct {
	columns   Columns
	delimiter rune
}

// Option applies a configuration option to a read or write.
type Option func(*options)

// WithColumns overrides column names. Empty names keep their defaults.
func WithColumns(c Columns) Option {
	return func(o *options) {
		if c.Onset != "" {
			o.columns.Onset = c.Onset
		}
		if c.Duration != "" {
			o.columns.Duration = c.Duration
		}
		if c.TrialType != "" {
			o.columns.TrialType = c.TrialType
		}
		if c.Weight != "" {
			o.columns.Weight = c.Weight
		}
	}
}

// WithDelimiter sets the field separator, e.g. ',' for CSV event files.
func WithDelimiter(d rune) Option {
	return func(o *options) {
		if d != 0 {
			o.delimiter = d
		}
	}
}

// ValidDelimiter reports whether d can separate fields. The quote, line
// breaks and the '#' comment marker are reserved by the table syntax.
func ValidDelimiter(d rune) bool {
	switch d {
	case 0, '"', '\r', '\n', '#', utf8.RuneError:
		return false
	}
	return utf8.ValidRune(d)
}

func newOptions(opts []Option) options {
	o := options{
		columns: Columns{
			Onset:     DefaultOnsetColumn,
			Duration:  DefaultDurationColumn,
			TrialType: DefaultTrialTypeColumn,
			Weight:    DefaultWeightColumn,
		},
		delimiter: DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
