package scheduler

import (
	"context"
	"testing"
	"time"

	"tutorhub/pkg/config"
	"tutorhub/pkg/logger"
	"tutorhub/pkg/model"
)

type mockNotificationRepository struct {
	inserted  []*model.NotificationRecord
	cancelled []string
}

func (m *mockNotificationRepository) Insert(ctx context.Context, record *model.NotificationRecord) error {
	m.inserted = append(m.inserted, record)
	return nil
}

func (m *mockNotificationRepository) FindByID(ctx context.Context, id string) (*model.NotificationRecord, error) {
	return nil, nil
}

func (m *mockNotificationRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*model.NotificationRecord, error) {
	return nil, nil
}

func (m *mockNotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time, emailID string) error {
	return nil
}

func (m *mockNotificationRepository) CancelByBooking(ctx context.Context, bookingID string) (int64, error) {
	m.cancelled = append(m.cancelled, bookingID)
	return 2, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func testEvent() *model.BookingEvent {
	return &model.BookingEvent{
		BookingID:    "65f000000000000000000001",
		TeacherID:    "t-1",
		StudentID:    "s-1",
		TeacherName:  "Ms. Rivera",
		StudentName:  "Jordan Lee",
		StudentEmail: "jordan@example.com",
		Subject:      "Algebra",
		Date:         "2024-06-10",
		Time:         "10:00",
		DurationMin:  60,
	}
}

func newTestScheduler(repo *mockNotificationRepository, now time.Time) *Scheduler {
	return &Scheduler{
		repo: repo,
		cfg:  testConfig(),
		now:  func() time.Time { return now },
	}
}

func TestScheduleForBooking_ReminderFireTimes(t *testing.T) {
	repo := &mockNotificationRepository{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(repo, now)

	if err := s.ScheduleForBooking(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.inserted) != 3 {
		t.Fatalf("expected 3 records, got %d", len(repo.inserted))
	}

	byType := map[string]*model.NotificationRecord{}
	for _, record := range repo.inserted {
		byType[record.Type] = record
	}

	confirmation := byType[model.NotificationBookingConfirmation]
	if confirmation == nil {
		t.Fatal("missing booking_confirmation record")
	}
	if !confirmation.ScheduledFor.Equal(now) {
		t.Errorf("confirmation scheduled for %v, want %v", confirmation.ScheduledFor, now)
	}

	reminder24 := byType[model.NotificationReminder24h]
	if reminder24 == nil {
		t.Fatal("missing reminder_24h record")
	}
	want24 := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	if !reminder24.ScheduledFor.Equal(want24) {
		t.Errorf("reminder_24h scheduled for %v, want %v", reminder24.ScheduledFor, want24)
	}

	sameDay := byType[model.NotificationReminderSameDay]
	if sameDay == nil {
		t.Fatal("missing reminder_same_day record")
	}
	wantSameDay := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	if !sameDay.ScheduledFor.Equal(wantSameDay) {
		t.Errorf("reminder_same_day scheduled for %v, want %v", sameDay.ScheduledFor, wantSameDay)
	}
}

func TestScheduleForBooking_PastFireTimesStillCreated(t *testing.T) {
	repo := &mockNotificationRepository{}
	// Booking made with under 2h notice: both reminder times are past.
	now := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)
	s := newTestScheduler(repo, now)

	if err := s.ScheduleForBooking(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.inserted) != 3 {
		t.Fatalf("expected 3 records even with past fire times, got %d", len(repo.inserted))
	}
	for _, record := range repo.inserted {
		if record.Sent || record.Cancelled {
			t.Errorf("record %s should start unsent and uncancelled", record.Type)
		}
	}
}

func TestScheduleForBooking_SnapshotData(t *testing.T) {
	repo := &mockNotificationRepository{}
	s := newTestScheduler(repo, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	if err := s.ScheduleForBooking(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := repo.inserted[0].Data
	expected := map[string]string{
		"teacher_name": "Ms. Rivera",
		"student_name": "Jordan Lee",
		"subject":      "Algebra",
		"date":         "2024-06-10",
		"time":         "10:00",
		"duration_min": "60",
	}
	for key, want := range expected {
		if data[key] != want {
			t.Errorf("data[%q] = %q, want %q", key, data[key], want)
		}
	}
}

func TestScheduleForBooking_InvalidDateFails(t *testing.T) {
	repo := &mockNotificationRepository{}
	s := newTestScheduler(repo, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	event := testEvent()
	event.Date = "June 10th"

	if err := s.ScheduleForBooking(context.Background(), event); err == nil {
		t.Fatal("expected error for invalid date")
	}
	if len(repo.inserted) != 0 {
		t.Errorf("no records should be created, got %d", len(repo.inserted))
	}
}

func TestRescheduleForBooking_CancelsThenSchedulesReminders(t *testing.T) {
	repo := &mockNotificationRepository{}
	s := newTestScheduler(repo, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	event := testEvent()
	event.Date = "2024-06-12"
	event.Time = "14:00"

	if err := s.RescheduleForBooking(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.cancelled) != 1 || repo.cancelled[0] != event.BookingID {
		t.Errorf("expected pending records of %s cancelled, got %v", event.BookingID, repo.cancelled)
	}

	if len(repo.inserted) != 2 {
		t.Fatalf("expected 2 fresh reminders, got %d", len(repo.inserted))
	}
	want24 := time.Date(2024, 6, 11, 14, 0, 0, 0, time.UTC)
	if !repo.inserted[0].ScheduledFor.Equal(want24) {
		t.Errorf("reminder_24h scheduled for %v, want %v", repo.inserted[0].ScheduledFor, want24)
	}
	wantSameDay := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	if !repo.inserted[1].ScheduledFor.Equal(wantSameDay) {
		t.Errorf("reminder_same_day scheduled for %v, want %v", repo.inserted[1].ScheduledFor, wantSameDay)
	}
}
