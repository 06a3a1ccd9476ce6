// Package worker builds condition models for queued uploads.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/firstlevel/internal/adapters/mq/queue"
	"github.com/okian/firstlevel/internal/adapters/repository"
	"github.com/okian/firstlevel/internal/domain/model"
	"github.com/okian/firstlevel/pkg/logger"
	"github.com/okian/firstlevel/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Builder turns an uploaded event table into a condition model.
type Builder interface {
	Build(ctx context.Context, payload []byte) (model.ConditionModel, error)
}

// Store receives finished designs.
type Store interface {
	Put(ctx context.Context, d repository.Design) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	builder Builder
	store   Store
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, b Builder, s Store, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		builder:  b,
		store:    s,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job",
					logger.String("design_id", job.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process builds one design. A build failure is stored on the design and
// is not an error of the worker; only a failed store write is returned.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	d := repository.Design{
		ID:      job.ID,
		Subject: job.Subject,
		Run:     job.Run,
		Digest:  job.Digest,
	}

	buildStart := time.Now()
	m, err := w.builder.Build(ctx, job.Payload)
	if err != nil {
		kind := FailureKind(err)
		metrics.RecordDesignFailed(kind)
		w.logger.Warn(ctx, "design build failed",
			logger.String("design_id", job.ID),
			logger.String("subject", job.Subject),
			logger.String("kind", kind),
			logger.Error(err),
		)
		d.Status = repository.StatusFailed
		d.Error = err.Error()
		d.ErrorKind = kind
	} else {
		metrics.RecordDesignBuilt(m.Len(), float64(time.Since(buildStart).Microseconds())/1000)
		w.logger.Debug(ctx, "design built",
			logger.String("design_id", job.ID),
			logger.Int("conditions", m.Len()),
			logger.Int("trials", m.TrialCount()),
		)
		d.Status = repository.StatusReady
		d.Model = m
		d.Trials = m.TrialCount()
	}

	if err := w.store.Put(ctx, d); err != nil {
		return fmt.Errorf("store design %s: %w", job.ID, err)
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdownOnce sync.Once
	logger       logger.Logger
}

// NewPool creates a pool of workerCount workers; a non-positive count
// uses one worker per CPU.
func NewPool(workerCount int, q Queue, b Builder, s Store) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, b, s, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets workers drain it. Workers still
// busy when ctx or the pool timeout expires are signalled to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var err error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			err = fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
		}
	}
	p.signal()
	metrics.UpdateWorkerCount(0)
	return err
}

func (p *Pool) signal() {
	p.shutdownOnce.Do(func() {
		for _, w := range p.workers {
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	})
}
