// Package repository stores built designs.
package repository

import (
	"context"
	"time"

	"github.com/okian/firstlevel/internal/domain/model"
)

// Status is the lifecycle state of a design build.
type Status string

// Design states.
const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Design is one subject/run event table and the model built from it.
type Design struct {
	ID        string
	Subject   string
	Run       string
	Digest    string // upload digest used for deduplication
	Status    Status
	Model     model.ConditionModel
	Trials    int
	Error     string // set when Status is failed
	ErrorKind string // machine-readable failure reason
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store provides read/write access to designs.
type Store interface {
	// Put inserts a design or replaces the one with the same ID.
	Put(ctx context.Context, d Design) error

	// Get returns the design with id or ErrNotFound.
	Get(ctx context.Context, id string) (Design, error)

	// List returns designs in insertion order, filtered by subject when
	// subject is non-empty.
	List(ctx context.Context, subject string) ([]Design, error)

	// Delete removes a design. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored designs.
	Count(ctx context.Context) int
}
