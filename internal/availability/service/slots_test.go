package service

import (
	"errors"
	"testing"

	availabilityerrors "tutorhub/internal/availability/errors"
	"tutorhub/pkg/model"
)

func defaultWeekAvailability() *model.TeacherAvailability {
	schedule := map[model.Weekday][]model.TimeInterval{}
	for _, day := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday} {
		schedule[day] = []model.TimeInterval{{Start: "09:00", End: "17:00"}}
	}
	return &model.TeacherAvailability{
		TeacherID:       "t-1",
		WeeklySchedule:  schedule,
		SlotDurationMin: 60,
		BufferTimeMin:   15,
	}
}

func TestGenerateSlots_DefaultMondaySchedule(t *testing.T) {
	av := defaultWeekAvailability()

	// 2024-06-10 is a Monday.
	slots, err := GenerateSlots(av, "2024-06-10", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []model.Slot{
		{Start: "09:00", End: "10:00", Available: true},
		{Start: "10:15", End: "11:15", Available: true},
		{Start: "11:30", End: "12:30", Available: true},
		{Start: "12:45", End: "13:45", Available: true},
		{Start: "14:00", End: "15:00", Available: true},
		{Start: "15:15", End: "16:15", Available: true},
	}

	if len(slots) != len(expected) {
		t.Fatalf("expected %d slots, got %d: %v", len(expected), len(slots), slots)
	}
	for i, want := range expected {
		if slots[i] != want {
			t.Errorf("slot %d: expected %+v, got %+v", i, want, slots[i])
		}
	}
}

func TestGenerateSlots_BookedSlotMarkedUnavailable(t *testing.T) {
	av := defaultWeekAvailability()
	bookings := []*model.Booking{
		{TeacherID: "t-1", Date: "2024-06-10", Time: "10:15", Status: model.StatusConfirmed},
	}

	slots, err := GenerateSlots(av, "2024-06-10", bookings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, slot := range slots {
		switch slot.Start {
		case "10:15":
			if slot.Available {
				t.Errorf("slot %s should be unavailable", slot.Start)
			}
		default:
			if !slot.Available {
				t.Errorf("slot %s should be available", slot.Start)
			}
		}
	}
}

func TestGenerateSlots_UnpaddedBookingTimeBlocksSlot(t *testing.T) {
	av := defaultWeekAvailability()
	bookings := []*model.Booking{
		{TeacherID: "t-1", Date: "2024-06-10", Time: "9:00", Status: model.StatusConfirmed},
	}

	slots, err := GenerateSlots(av, "2024-06-10", bookings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, slot := range slots {
		if slot.Start == "09:00" && slot.Available {
			t.Errorf("slot 09:00 should be unavailable despite the booking being stored as 9:00")
		}
	}
}

func TestGenerateSlots_EmptyWeekday(t *testing.T) {
	av := defaultWeekAvailability()

	// 2024-06-09 is a Sunday, which has no configured intervals.
	slots, err := GenerateSlots(av, "2024-06-09", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %d", len(slots))
	}
}

func TestGenerateSlots_SlotLongerThanInterval(t *testing.T) {
	av := &model.TeacherAvailability{
		TeacherID: "t-1",
		WeeklySchedule: map[model.Weekday][]model.TimeInterval{
			model.Monday: {{Start: "09:00", End: "09:45"}},
		},
		SlotDurationMin: 60,
		BufferTimeMin:   0,
	}

	slots, err := GenerateSlots(av, "2024-06-10", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots when duration exceeds interval, got %d", len(slots))
	}
}

func TestGenerateSlots_MalformedInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval model.TimeInterval
	}{
		{
			name:     "start after end",
			interval: model.TimeInterval{Start: "17:00", End: "09:00"},
		},
		{
			name:     "start equals end",
			interval: model.TimeInterval{Start: "09:00", End: "09:00"},
		},
		{
			name:     "unparseable start",
			interval: model.TimeInterval{Start: "9am", End: "17:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			av := &model.TeacherAvailability{
				TeacherID: "t-1",
				WeeklySchedule: map[model.Weekday][]model.TimeInterval{
					model.Monday: {tt.interval},
				},
				SlotDurationMin: 60,
			}

			_, err := GenerateSlots(av, "2024-06-10", nil)
			if err == nil {
				t.Fatal("expected configuration error, got nil")
			}
			if !errors.Is(err, availabilityerrors.ErrMalformedInterval) {
				t.Errorf("expected ErrMalformedInterval, got %v", err)
			}
		})
	}
}

func TestGenerateSlots_LastSlotFitsExactly(t *testing.T) {
	av := &model.TeacherAvailability{
		TeacherID: "t-1",
		WeeklySchedule: map[model.Weekday][]model.TimeInterval{
			model.Monday: {{Start: "09:00", End: "11:00"}},
		},
		SlotDurationMin: 60,
		BufferTimeMin:   0,
	}

	slots, err := GenerateSlots(av, "2024-06-10", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[1].Start != "10:00" || slots[1].End != "11:00" {
		t.Errorf("expected last slot 10:00-11:00, got %s-%s", slots[1].Start, slots[1].End)
	}
}

func TestGenerateSlots_MultipleIntervals(t *testing.T) {
	av := &model.TeacherAvailability{
		TeacherID: "t-1",
		WeeklySchedule: map[model.Weekday][]model.TimeInterval{
			model.Monday: {
				{Start: "09:00", End: "10:00"},
				{Start: "14:00", End: "16:00"},
			},
		},
		SlotDurationMin: 60,
		BufferTimeMin:   0,
	}

	slots, err := GenerateSlots(av, "2024-06-10", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	starts := []string{}
	for _, s := range slots {
		starts = append(starts, s.Start)
	}
	expected := []string{"09:00", "14:00", "15:00"}
	if len(starts) != len(expected) {
		t.Fatalf("expected starts %v, got %v", expected, starts)
	}
	for i := range expected {
		if starts[i] != expected[i] {
			t.Errorf("slot %d: expected start %s, got %s", i, expected[i], starts[i])
		}
	}
}
