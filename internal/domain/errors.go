package domain

import "errors"

// Sentinel errors shared across services. Services wrap these with context;
// controllers translate them to HTTP status codes.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput indicates the request carried invalid or missing fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEventInactive indicates the event is not open for attendance actions.
	ErrEventInactive = errors.New("event is not active")
	// ErrAlreadyClosed indicates a checkout was attempted on a check-in that
	// already has a check-out time.
	ErrAlreadyClosed = errors.New("check-in already closed")
	// ErrConflict indicates a concurrent write for the same registration was
	// detected. The whole operation is safe to retry: nothing was committed.
	ErrConflict = errors.New("concurrent update conflict")
)
