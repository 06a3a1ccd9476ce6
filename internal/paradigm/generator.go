// Package paradigm generates synthetic block-design event tables.
package paradigm

import (
	"math/rand"

	"github.com/okian/firstlevel/internal/domain/model"
)

// Default paradigm: the motor localizer used in first-level tutorials.
const (
	defaultCycles   = 4
	defaultStart    = 10.0
	defaultDuration = 15.0
	defaultRest     = 15.0
	defaultSeed     = 42
	weightBase      = 0.5
)

// Generator produces block-design trial records.
type Generator struct {
	conditions []string
	cycles     int
	start      float64
	duration   float64
	rest       float64
	jitter     float64
	shuffle    bool
	weights    bool
	seed       int64
}

// New creates a Generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		conditions: []string{"Finger", "Foot", "Lips"},
		cycles:     defaultCycles,
		start:      defaultStart,
		duration:   defaultDuration,
		rest:       defaultRest,
		seed:       defaultSeed,
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Records returns the trials in presentation order. Each call with the
// same configuration returns the same sequence.
func (g *Generator) Records() []model.TrialRecord {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic seed for reproducible paradigms
	out := make([]model.TrialRecord, 0, g.cycles*len(g.conditions))

	order := append([]string(nil), g.conditions...)
	t := g.start
	for c := 0; c < g.cycles; c++ {
		if g.shuffle {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		for _, label := range order {
			rec := model.TrialRecord{
				Onset:     t,
				Duration:  g.duration,
				TrialType: label,
			}
			if g.jitter > 0 {
				rec.Onset += rng.Float64() * g.jitter
			}
			if g.weights {
				w := weightBase + rng.Float64()
				rec.Weight = &w
			}
			out = append(out, rec)
			t += g.duration + g.rest
		}
	}
	return out
}

// Conditions returns the configured labels.
func (g *Generator) Conditions() []string {
	return append([]string(nil), g.conditions...)
}
