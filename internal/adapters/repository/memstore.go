package repository

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/okian/firstlevel/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemStore is an in-memory Store keeping insertion order.
type MemStore struct {
	mu    sync.RWMutex
	byID  map[string]*list.Element
	order *list.List // of Design

	maxDesigns            int
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemStore constructs a store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		byID:                  make(map[string]*list.Element),
		order:                 list.New(),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   time.Now,
		stopChan:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.startMetricsUpdater(ctx)
	return s
}

// Put inserts or replaces a design.
func (s *MemStore) Put(ctx context.Context, d Design) error {
	if d.ID == "" {
		return ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	d.UpdatedAt = now
	if el, ok := s.byID[d.ID]; ok {
		prev := el.Value.(Design)
		d.CreatedAt = prev.CreatedAt
		el.Value = d
		return nil
	}

	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if s.maxDesigns > 0 && s.order.Len() >= s.maxDesigns {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.byID, oldest.Value.(Design).ID)
	}
	s.byID[d.ID] = s.order.PushBack(d)
	return nil
}

// Get returns a design by id.
func (s *MemStore) Get(ctx context.Context, id string) (Design, error) {
	if err := ctx.Err(); err != nil {
		return Design{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.byID[id]
	if !ok {
		return Design{}, ErrNotFound
	}
	return el.Value.(Design), nil
}

// List returns designs in insertion order.
func (s *MemStore) List(ctx context.Context, subject string) ([]Design, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Design, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		d := el.Value.(Design)
		if subject != "" && d.Subject != subject {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Delete removes a design.
func (s *MemStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.byID[id]; ok {
		s.order.Remove(el)
		delete(s.byID, id)
	}
	return nil
}

// Count returns the number of designs.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

// Close stops the metrics updater.
func (s *MemStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateDesignsStored(s.Count(ctx))
			}
		}
	}()
}
