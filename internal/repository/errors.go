package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
)
