package service

import (
	"errors"

	"github.com/okian/firstlevel/internal/adapters/repository"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrEmptyUpload  = errors.New("upload is empty")
	ErrBackpressure = errors.New("build queue is full")
	ErrNotFound     = repository.ErrNotFound
)
