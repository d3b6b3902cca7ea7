package model

import (
	"time"
)

// Booking lifecycle event types carried in the kafka event-type header.
const (
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingRescheduled = "booking.rescheduled"
)

// BookingEvent is the payload published on every booking lifecycle
// transition and consumed by the notifications service. It carries the
// full render snapshot so the consumer never reads the Bookings collection.
type BookingEvent struct {
	BookingID          string    `json:"booking_id"`
	TeacherID          string    `json:"teacher_id"`
	StudentID          string    `json:"student_id"`
	TeacherName        string    `json:"teacher_name"`
	StudentName        string    `json:"student_name"`
	StudentEmail       string    `json:"student_email"`
	Subject            string    `json:"subject"`
	Date               string    `json:"date"`
	Time               string    `json:"time"`
	DurationMin        int       `json:"duration_min"`
	CancelledBy        string    `json:"cancelled_by,omitempty"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}
