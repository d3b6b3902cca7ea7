package model

import (
	"time"
)

const (
	NotificationBookingConfirmation = "booking_confirmation"
	NotificationReminder24h         = "reminder_24h"
	NotificationReminderSameDay     = "reminder_same_day"
)

// NotificationRecord is one scheduled confirmation or reminder. Data is a
// render snapshot captured at scheduling time, so later booking mutation
// does not change the text of an already-scheduled message. Records are
// never physically deleted; cancellation flips Cancelled.
type NotificationRecord struct {
	ID           string            `json:"id,omitempty" bson:"_id,omitempty"`
	Type         string            `json:"type" bson:"type" validate:"required,oneof=booking_confirmation reminder_24h reminder_same_day"`
	BookingID    string            `json:"booking_id" bson:"booking_id" validate:"required"`
	UserID       string            `json:"user_id" bson:"user_id" validate:"required"`
	UserEmail    string            `json:"user_email" bson:"user_email" validate:"required,email"`
	ScheduledFor time.Time         `json:"scheduled_for" bson:"scheduled_for" validate:"required"`
	Sent         bool              `json:"sent" bson:"sent"`
	SentAt       *time.Time        `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	EmailID      string            `json:"email_id,omitempty" bson:"email_id,omitempty"`
	Cancelled    bool              `json:"cancelled" bson:"cancelled"`
	Data         map[string]string `json:"data" bson:"data"`
	CreatedAt    time.Time         `json:"created_at" bson:"created_at"`
}
