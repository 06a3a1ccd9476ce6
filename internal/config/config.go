// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns defaults; Load(ctx) layers a YAML file and env vars on top.
// - Validation errors wrap ErrInvalidConfig, source errors wrap ErrLoadConfig.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory build queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of design build workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the upload deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxDesigns bounds the design repository; 0 keeps everything.
	MaxDesigns int `koanf:"max_designs"`

	// MaxBodyBytes caps uploaded event table size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// Delimiter is the event table field separator; a single character.
	Delimiter string `koanf:"delimiter"`

	// Column names of the event table.
	OnsetColumn     string `koanf:"onset_column"`
	DurationColumn  string `koanf:"duration_column"`
	TrialTypeColumn string `koanf:"trial_type_column"`
	WeightColumn    string `koanf:"weight_column"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		QueueSize:       1_024,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      10_000,
		MaxDesigns:      50_000,
		MaxBodyBytes:    8 << 20,
		Delimiter:       "\t",
		OnsetColumn:     "onset",
		DurationColumn:  "duration",
		TrialTypeColumn: "trial_type",
		WeightColumn:    "weight",
	}
}

// DelimiterRune returns the configured delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return '\t'
}
