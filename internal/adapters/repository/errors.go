package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound  = errors.New("design not found")
	ErrInvalidID = errors.New("design id must not be empty")
)
