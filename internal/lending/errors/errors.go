package errors

import "errors"

var (
	ErrNotFound = errors.New("document not found")

	ErrInvalidID = errors.New("invalid ID format")

	// ErrLeaseHeld means another request holds the resource lease.
	ErrLeaseHeld = errors.New("resource lease is held by another owner")

	// ErrStaleWrite means a conditional update matched nothing because the document moved on.
	ErrStaleWrite = errors.New("document changed since it was read")

	// ErrDuplicateOpenLoan is raised by the unique open-loan index.
	ErrDuplicateOpenLoan = errors.New("resource already has an open loan")
)
