package errors

import "errors"

var (
	ErrNotFound = errors.New("notification not found")

	ErrInvalidID = errors.New("invalid notification ID format")

	// ErrAlreadySent guards the sent=false to sent=true transition:
	// marking is conditional, so a record transitions at most once.
	ErrAlreadySent = errors.New("notification already sent")
)
