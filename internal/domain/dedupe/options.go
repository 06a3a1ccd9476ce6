// Package dedupe remembers submitted event tables so repeated uploads map
// back to the design they already produced.
package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of digests to keep in memory.
// If maxSize > 0: bounded mode, oldest entry evicted first.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
