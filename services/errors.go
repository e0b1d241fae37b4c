package services

import "errors"

// ValidationError carries the user-facing message for malformed input.
// Handlers map it to a 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// DatastoreError wraps a failed read so handlers can degrade the way the
// read paths are specified to: empty results plus an error field rather
// than a hard failure.
type DatastoreError struct {
	Op  string
	Err error
}

func (e *DatastoreError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *DatastoreError) Unwrap() error { return e.Err }

var (
	// ErrSchemaNotFound maps to a 404.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrAlreadyRegistered maps to a 409 on waitlist signup.
	ErrAlreadyRegistered = errors.New("email already registered")
)
