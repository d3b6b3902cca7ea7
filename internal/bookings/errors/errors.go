package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken maps the unique-index violation on
	// (teacher_id, date, time) for active bookings.
	ErrSlotTaken = errors.New("slot already taken")
)
