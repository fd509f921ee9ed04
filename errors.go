package relay

import "errors"

var (
	// ErrNotFound is returned when no file is stored for a logical filename
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when an upload token does not match
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is returned when a file is already stored for a logical filename
	ErrConflict = errors.New("already exists")
	// ErrInsufficientStorage is returned when the stored size differs from the declared size
	ErrInsufficientStorage = errors.New("insufficient storage")
	// ErrBadRequest is returned for requests the relay does not handle
	ErrBadRequest = errors.New("bad request")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)
