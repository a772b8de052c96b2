package repository

import "errors"

var (
	// ErrNotFound is returned by writes that matched no row
	ErrNotFound = errors.New("record not found")
	// ErrStillReferenced is returned when a delete is blocked by a foreign key
	ErrStillReferenced = errors.New("record is still referenced")
)
