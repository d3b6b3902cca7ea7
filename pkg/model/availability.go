package model

import (
	"time"
)

type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// TimeInterval is a [Start, End) block of a weekday, minute precision ("HH:MM").
type TimeInterval struct {
	Start string `json:"start" bson:"start" validate:"required,time_of_day"`
	End   string `json:"end" bson:"end" validate:"required,time_of_day"`
}

// TeacherAvailability is the one live weekly recurring schedule of a teacher.
// Created with defaults on first access; superseded by updates, never deleted.
type TeacherAvailability struct {
	ID                        string                      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TeacherID                 string                      `json:"teacher_id" bson:"teacher_id" validate:"required,min=1,max=64"`
	WeeklySchedule            map[Weekday][]TimeInterval  `json:"weekly_schedule" bson:"weekly_schedule" validate:"required"`
	SlotDurationMin           int                         `json:"slot_duration_min" bson:"slot_duration_min" validate:"required,min=5,max=480"`
	BufferTimeMin             int                         `json:"buffer_time_min" bson:"buffer_time_min" validate:"min=0,max=480"`
	MinAdvanceBookingDays     int                         `json:"min_advance_booking_days" bson:"min_advance_booking_days" validate:"min=0,max=365"`
	MaxAdvanceBookingDays     int                         `json:"max_advance_booking_days" bson:"max_advance_booking_days" validate:"min=0,max=365"`
	AllowCancellation         bool                        `json:"allow_cancellation" bson:"allow_cancellation"`
	CancellationDeadlineHours int                         `json:"cancellation_deadline_hours" bson:"cancellation_deadline_hours" validate:"min=0,max=720"`
	AllowRescheduling         bool                        `json:"allow_rescheduling" bson:"allow_rescheduling"`
	ReschedulingDeadlineHours int                         `json:"rescheduling_deadline_hours" bson:"rescheduling_deadline_hours" validate:"min=0,max=720"`
	CreatedAt                 time.Time                   `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt                 time.Time                   `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Slot is one bookable candidate interval of SlotDurationMin minutes.
type Slot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}
