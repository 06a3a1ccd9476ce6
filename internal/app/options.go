package service

import (
	"github.com/okian/firstlevel/internal/adapters/eventfile"
	"github.com/okian/firstlevel/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of build workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending builds.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the upload digest cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxDesigns bounds the design store; zero keeps every design.
func WithMaxDesigns(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxDesigns = n
		}
	}
}

// WithTableOptions sets the column names and delimiter used to parse uploads.
func WithTableOptions(opts ...eventfile.Option) Option {
	return func(s *Service) {
		s.tableOpts = append(s.tableOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
