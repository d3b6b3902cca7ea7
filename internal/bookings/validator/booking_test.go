package validator

import (
	"strings"
	"testing"
	"time"

	"tutorhub/pkg/logger"
	"tutorhub/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func testAvailability() *model.TeacherAvailability {
	return &model.TeacherAvailability{
		TeacherID: "t-1",
		WeeklySchedule: map[model.Weekday][]model.TimeInterval{
			model.Monday:    {{Start: "09:00", End: "17:00"}},
			model.Tuesday:   {{Start: "09:00", End: "17:00"}},
			model.Wednesday: {{Start: "09:00", End: "17:00"}},
			model.Thursday:  {{Start: "09:00", End: "17:00"}},
			model.Friday:    {{Start: "09:00", End: "17:00"}},
		},
		SlotDurationMin:           60,
		BufferTimeMin:             15,
		MinAdvanceBookingDays:     1,
		MaxAdvanceBookingDays:     30,
		AllowCancellation:         true,
		CancellationDeadlineHours: 24,
		AllowRescheduling:         true,
		ReschedulingDeadlineHours: 24,
	}
}

func TestValidateCreation_AdvanceWindowBoundary(t *testing.T) {
	v := NewBookingValidator(testLogger())
	av := testAvailability()

	// Wednesday 2024-06-05, noon.
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    string
		wantErr bool
		wantSub string
	}{
		{
			name:    "exactly min advance days ahead is accepted",
			date:    "2024-06-06",
			wantErr: false,
		},
		{
			name:    "one day under min advance is rejected",
			date:    "2024-06-05",
			wantErr: true,
			wantSub: "at least 1 day",
		},
		{
			name:    "exactly max advance days ahead is accepted",
			date:    "2024-07-05",
			wantErr: false,
		},
		{
			name:    "one day over max advance is rejected",
			date:    "2024-07-06",
			wantErr: true,
			wantSub: "at most 30 day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreation(av, tt.date, "10:15", now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantSub) {
					t.Errorf("expected error containing %q, got %q", tt.wantSub, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateCreation_WeekdayAndInterval(t *testing.T) {
	v := NewBookingValidator(testLogger())
	av := testAvailability()
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

	// 2024-06-09 is a Sunday with no configured intervals.
	err := v.ValidateCreation(av, "2024-06-09", "10:00", now)
	if err == nil {
		t.Fatal("expected error for unconfigured weekday")
	}
	if !strings.Contains(err.Error(), "no availability on Sunday") {
		t.Errorf("unexpected error: %v", err)
	}

	// Monday, but before the working day starts.
	err = v.ValidateCreation(av, "2024-06-10", "08:00", now)
	if err == nil {
		t.Fatal("expected error for time outside intervals")
	}
	if !strings.Contains(err.Error(), "outside the teacher's availability") {
		t.Errorf("unexpected error: %v", err)
	}

	// 17:00 is the exclusive right edge of [09:00, 17:00).
	if err := v.ValidateCreation(av, "2024-06-10", "16:59", now); err != nil {
		t.Errorf("16:59 should be inside the interval, got %v", err)
	}
	if err := v.ValidateCreation(av, "2024-06-10", "17:00", now); err == nil {
		t.Error("17:00 should be outside the half-open interval")
	}
}

func TestValidateCreation_CollectsAllReasons(t *testing.T) {
	v := NewBookingValidator(testLogger())
	av := testAvailability()
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

	// Same-day Sunday request: under min advance AND unconfigured weekday.
	err := v.ValidateCreation(av, "2024-06-02", "10:00", now)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) < 2 {
		t.Errorf("expected all failing reasons collected, got %d: %v", len(verrs), verrs)
	}
}

func TestValidateModification_DeadlineBoundary(t *testing.T) {
	v := NewBookingValidator(testLogger())

	sessionStart := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		allowed bool
		wantErr bool
		wantSub string
	}{
		{
			name:    "exactly 24h before succeeds",
			now:     time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC),
			allowed: true,
			wantErr: false,
		},
		{
			name:    "23h59m before fails",
			now:     time.Date(2024, 6, 9, 10, 1, 0, 0, time.UTC),
			allowed: true,
			wantErr: true,
			wantSub: "deadline passed",
		},
		{
			name:    "policy flag disabled fails regardless of notice",
			now:     time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			allowed: false,
			wantErr: true,
			wantSub: "not permitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateModification("cancellation", tt.allowed, 24, sessionStart, tt.now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected policy error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantSub) {
					t.Errorf("expected error containing %q, got %q", tt.wantSub, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateBooking_StructTags(t *testing.T) {
	v := NewBookingValidator(testLogger())

	booking := &model.Booking{
		TeacherID:    "t-1",
		StudentID:    "s-1",
		TeacherName:  "Ms. Rivera",
		StudentName:  "Jordan Lee",
		StudentEmail: "jordan@example.com",
		Subject:      "Algebra",
		Date:         "2024-06-10",
		Time:         "10:15",
		DurationMin:  60,
		Status:       model.StatusConfirmed,
	}

	if err := v.ValidateBooking(booking); err != nil {
		t.Errorf("expected valid booking, got %v", err)
	}

	booking.StudentEmail = "not-an-email"
	booking.Date = "10/06/2024"
	err := v.ValidateBooking(booking)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "email") || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Errorf("expected email and date reasons, got %q", err.Error())
	}
}
