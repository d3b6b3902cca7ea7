package model

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking is one scheduled tutoring session. Date is a calendar date
// ("2006-01-02"), Time the slot start ("HH:MM"), both minute precision.
// Active mirrors status membership in {pending, confirmed}; the unique
// partial index on (teacher_id, date, time) filters on it.
type Booking struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TeacherID          string    `json:"teacher_id" bson:"teacher_id" validate:"required,min=1,max=64"`
	StudentID          string    `json:"student_id" bson:"student_id" validate:"required,min=1,max=64"`
	TeacherName        string    `json:"teacher_name" bson:"teacher_name" validate:"required,min=1,max=100"`
	StudentName        string    `json:"student_name" bson:"student_name" validate:"required,min=1,max=100"`
	StudentEmail       string    `json:"student_email" bson:"student_email" validate:"required,email"`
	Subject            string    `json:"subject" bson:"subject" validate:"required,min=1,max=100"`
	Date               string    `json:"date" bson:"date" validate:"required,calendar_date"`
	Time               string    `json:"time" bson:"time" validate:"required,time_of_day"`
	DurationMin        int       `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	Status             string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Notes              string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CancelledBy        string    `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty" validate:"omitempty,oneof=student teacher system"`
	CancellationReason string    `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty" validate:"omitempty,max=500"`
	Active             bool      `json:"-" bson:"active"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// IsTerminal reports whether the booking can no longer transition.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}

type CancelRequest struct {
	CancelledBy string `json:"cancelled_by" validate:"required,oneof=student teacher system"`
	Reason      string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type RescheduleRequest struct {
	Date string `json:"date" validate:"required,calendar_date"`
	Time string `json:"time" validate:"required,time_of_day"`
}
