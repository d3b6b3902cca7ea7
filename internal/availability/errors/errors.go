package errors

import "errors"

var (
	ErrNotFound = errors.New("availability not found")

	ErrInvalidID = errors.New("invalid availability ID format")

	// ErrMalformedInterval marks a stored interval whose start is not
	// strictly before its end. Surfaced to the caller, never skipped.
	ErrMalformedInterval = errors.New("malformed availability interval")
)
