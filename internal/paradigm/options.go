package paradigm

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithConditions sets the condition labels cycled through each block.
func WithConditions(labels ...string) Option {
	return func(g *Generator) {
		if len(labels) > 0 {
			g.conditions = append([]string(nil), labels...)
		}
	}
}

// WithCycles sets how many times every condition is presented.
func WithCycles(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.cycles = n
		}
	}
}

// WithTiming sets the first onset, the block duration and the rest
// interval between blocks.
func WithTiming(start, duration, rest float64) Option {
	return func(g *Generator) {
		if start >= 0 {
			g.start = start
		}
		if duration > 0 {
			g.duration = duration
		}
		if rest >= 0 {
			g.rest = rest
		}
	}
}

// WithJitter adds a uniform random delay in [0, max) to every onset.
func WithJitter(max float64) Option {
	return func(g *Generator) {
		if max >= 0 {
			g.jitter = max
		}
	}
}

// WithShuffle randomizes condition order inside every cycle.
func WithShuffle(enabled bool) Option {
	return func(g *Generator) {
		g.shuffle = enabled
	}
}

// WithWeights attaches a random amplitude in [0.5, 1.5) to every trial.
func WithWeights(enabled bool) Option {
	return func(g *Generator) {
		g.weights = enabled
	}
}

// WithSeed makes generation reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}
