// Package service wires the design store, upload deduplication, the build
// queue and its workers behind the operations the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/firstlevel/internal/adapters/eventfile"
	"github.com/okian/firstlevel/internal/adapters/mq/queue"
	"github.com/okian/firstlevel/internal/adapters/mq/worker"
	"github.com/okian/firstlevel/internal/adapters/repository"
	"github.com/okian/firstlevel/internal/domain/dedupe"
	"github.com/okian/firstlevel/internal/domain/model"
	"github.com/okian/firstlevel/internal/domain/types"
	"github.com/okian/firstlevel/pkg/logger"
	"github.com/okian/firstlevel/pkg/metrics"
)

const (
	defaultQueueSize  = 1024
	defaultDedupeSize = 10_000
	defaultMaxDesigns = 50_000
)

// Upload is one subject/run event table submitted for grouping.
type Upload struct {
	Subject string
	Run     string
	Payload []byte
}

// Service implements the API dependencies for design building.
type Service struct {
	mu       sync.RWMutex
	submitMu sync.Mutex

	store   *repository.MemStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	builder tableBuilder

	workerCount int
	queueSize   int
	dedupeSize  int
	maxDesigns  int
	tableOpts   []eventfile.Option

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Components are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		maxDesigns:  defaultMaxDesigns,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.builder = tableBuilder{opts: s.tableOpts}
	return s
}

// Start creates the components and starts the workers. Starting a running
// service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting design service")

	// Components outlive the Start call; Stop ends them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewMemStore(runCtx, repository.WithMaxDesigns(s.maxDesigns))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.builder, s.store)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "design service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxDesigns", s.maxDesigns),
	)
	return nil
}

// Stop drains queued builds and releases the components.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping design service")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	_ = s.store.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "design service stopped")
}

// Submit accepts an upload for asynchronous grouping. An identical
// subject, run and payload returns the receipt of the first upload.
func (s *Service) Submit(ctx context.Context, u Upload) (types.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.Receipt{}, ErrNotStarted
	}
	if len(u.Payload) == 0 {
		return types.Receipt{}, ErrEmptyUpload
	}

	digest := dedupe.Digest([]byte(u.Subject), []byte(u.Run), u.Payload)
	id := uuid.NewString()

	// Recording the digest and storing its pending design happen under
	// submitMu, so a recorded digest without a design was evicted.
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	if rec, dup := s.duplicate(ctx, digest, id); dup {
		s.logger.Debug(ctx, "duplicate upload",
			logger.String("design_id", rec.ID),
			logger.String("subject", u.Subject),
		)
		return rec, nil
	}

	pending := repository.Design{
		ID:      id,
		Subject: u.Subject,
		Run:     u.Run,
		Digest:  digest,
		Status:  repository.StatusPending,
	}
	if err := s.store.Put(ctx, pending); err != nil {
		s.deduper.Unrecord(ctx, digest)
		return types.Receipt{}, fmt.Errorf("store pending design: %w", err)
	}

	job := queue.Job{ID: id, Subject: u.Subject, Run: u.Run, Digest: digest, Payload: u.Payload}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, digest)
		_ = s.store.Delete(context.WithoutCancel(ctx), id)
		if queue.IsBackpressure(err) {
			return types.Receipt{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return types.Receipt{}, fmt.Errorf("enqueue design: %w", err)
	}

	return types.Receipt{ID: id, Status: string(repository.StatusPending)}, nil
}

// duplicate records digest for id, or returns the receipt of the design
// already recorded for it. A digest whose design was evicted from the
// store is recorded again for id. Callers hold submitMu.
func (s *Service) duplicate(ctx context.Context, digest, id string) (types.Receipt, bool) {
	existing, seen := s.deduper.SeenOrRecord(ctx, digest, id)
	if !seen {
		return types.Receipt{}, false
	}
	d, err := s.store.Get(ctx, existing)
	if errors.Is(err, repository.ErrNotFound) {
		s.deduper.Unrecord(ctx, digest)
		s.deduper.SeenOrRecord(ctx, digest, id)
		return types.Receipt{}, false
	}
	metrics.RecordDuplicateUpload()
	status := string(repository.StatusPending)
	if err == nil {
		status = string(d.Status)
	}
	return types.Receipt{ID: existing, Status: status, Duplicate: true}, true
}

// GroupNow parses and groups payload synchronously. It needs no Start.
func (s *Service) GroupNow(ctx context.Context, payload []byte) (model.ConditionModel, error) {
	if len(payload) == 0 {
		return model.ConditionModel{}, ErrEmptyUpload
	}
	return s.builder.Build(ctx, payload)
}

// Design returns one design by id.
func (s *Service) Design(ctx context.Context, id string) (types.DesignView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.DesignView{}, ErrNotStarted
	}
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return types.DesignView{}, err
	}
	return view(d), nil
}

// Designs lists designs in submission order, filtered by subject when set.
func (s *Service) Designs(ctx context.Context, subject string) ([]types.DesignView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	ds, err := s.store.List(ctx, subject)
	if err != nil {
		return nil, err
	}
	out := make([]types.DesignView, len(ds))
	for i, d := range ds {
		out[i] = view(d)
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"maxDesigns":  s.maxDesigns,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		designs := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["designs"] = designs
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateDesignsStored(designs)
	}

	return stats
}

// IsBadInput reports whether err describes a defect in the uploaded table.
func IsBadInput(err error) bool {
	switch worker.FailureKind(err) {
	case worker.KindMalformed, worker.KindNotNumeric, worker.KindMissingColumn, worker.KindEmptyTable:
		return true
	}
	return false
}

func view(d repository.Design) types.DesignView {
	v := types.DesignView{
		ID:        d.ID,
		Subject:   d.Subject,
		Run:       d.Run,
		Status:    string(d.Status),
		Trials:    d.Trials,
		Error:     d.Error,
		ErrorKind: d.ErrorKind,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Status == repository.StatusReady {
		m := d.Model
		v.Model = &m
	}
	return v
}
