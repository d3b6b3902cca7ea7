package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	bookingserrors "tutorhub/internal/bookings/errors"
	bookingvalidator "tutorhub/internal/bookings/validator"
	"tutorhub/pkg/config"
	apperrors "tutorhub/pkg/errors"
	"tutorhub/pkg/kafka"
	"tutorhub/pkg/logger"
	"tutorhub/pkg/model"

	mongotx "tutorhub/pkg/db/mongo"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

type mockBookingRepository struct {
	createFunc       func(ctx context.Context, booking *model.Booking) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Booking, error)
	updateStatusFunc func(ctx context.Context, id string, status string, cancelledBy string, reason string) error
	moveFunc         func(ctx context.Context, id string, date string, timeOfDay string) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "65f000000000000000000001"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindActiveByTeacherAndDate(ctx context.Context, teacherID string, date string) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) FindByTeacher(ctx context.Context, teacherID string, fromDate string, toDate string, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) CountByTeacher(ctx context.Context, teacherID string, fromDate string, toDate string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status string, cancelledBy string, reason string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, cancelledBy, reason)
	}
	return nil
}

func (m *mockBookingRepository) Move(ctx context.Context, id string, date string, timeOfDay string) error {
	if m.moveFunc != nil {
		return m.moveFunc(ctx, id, date, timeOfDay)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongodriver.NewSessionContext(ctx, nil))
}

type mockAvailabilityProvider struct {
	av *model.TeacherAvailability
}

func (m *mockAvailabilityProvider) GetForTeacher(ctx context.Context, teacherID string) (*model.TeacherAvailability, error) {
	return m.av, nil
}

type mockPublisher struct {
	published []kafka.Message
	failures  int
	attempts  int
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.attempts++
	if m.failures > 0 {
		m.failures--
		return fmt.Errorf("broker unavailable")
	}
	m.published = append(m.published, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
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

func newTestService(repo *mockBookingRepository, publisher *mockPublisher, now time.Time) *bookingService {
	cfg := testConfig()
	return &bookingService{
		repo:         repo,
		availability: &mockAvailabilityProvider{av: testAvailability()},
		validator:    bookingvalidator.NewBookingValidator(cfg.Log),
		publisher:    publisher,
		cfg:          cfg,
		now:          func() time.Time { return now },
	}
}

func validBookingRequest() *model.Booking {
	return &model.Booking{
		TeacherID:    "t-1",
		StudentID:    "s-1",
		TeacherName:  "Ms. Rivera",
		StudentName:  "Jordan Lee",
		StudentEmail: "jordan@example.com",
		Subject:      "Algebra",
		Date:         "2024-06-10",
		Time:         "10:15",
	}
}

func confirmedBooking() *model.Booking {
	b := validBookingRequest()
	b.ID = "65f000000000000000000001"
	b.DurationMin = 60
	b.Status = model.StatusConfirmed
	b.Active = true
	return b
}

func TestCreate_Success(t *testing.T) {
	publisher := &mockPublisher{}
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockBookingRepository{}, publisher, now)

	booking := validBookingRequest()
	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.StatusConfirmed {
		t.Errorf("expected status confirmed, got %s", booking.Status)
	}
	if booking.DurationMin != 60 {
		t.Errorf("expected duration defaulted to 60, got %d", booking.DurationMin)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if got := publisher.published[0].Headers[kafka.HeaderEventType]; got != model.EventBookingConfirmed {
		t.Errorf("expected event type %s, got %s", model.EventBookingConfirmed, got)
	}
}

func TestCreate_CanonicalizesUnpaddedTime(t *testing.T) {
	var stored *model.Booking
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			stored = booking
			return nil
		},
	}
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &mockPublisher{}, now)

	booking := validBookingRequest()
	booking.Time = "9:00"
	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("expected booking to reach the repository")
	}
	if stored.Time != "09:00" {
		t.Errorf("expected stored time 09:00, got %q", stored.Time)
	}
}

func TestCreate_SlotTakenMapsToConflict(t *testing.T) {
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			return fmt.Errorf("%w: t-1 2024-06-10 10:15", bookingserrors.ErrSlotTaken)
		},
	}
	publisher := &mockPublisher{}
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, publisher, now)

	err := svc.Create(context.Background(), validBookingRequest())
	if err == nil {
		t.Fatal("expected conflict error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %v", apperrors.CodeConflict, err)
	}
	if len(publisher.published) != 0 {
		t.Errorf("no event should be published on conflict, got %d", len(publisher.published))
	}
}

func TestCreate_ValidationRejectsBadSlot(t *testing.T) {
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockBookingRepository{}, &mockPublisher{}, now)

	booking := validBookingRequest()
	booking.Date = "2024-06-09" // Sunday, unconfigured
	booking.Time = "08:00"

	err := svc.Create(context.Background(), booking)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %v", apperrors.CodeValidation, err)
	}
}

func TestCancel_Success(t *testing.T) {
	var gotStatus, gotBy, gotReason string
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string, cancelledBy string, reason string) error {
			gotStatus, gotBy, gotReason = status, cancelledBy, reason
			return nil
		},
	}
	publisher := &mockPublisher{}
	now := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, publisher, now)

	err := svc.Cancel(context.Background(), "65f000000000000000000001", &model.CancelRequest{
		CancelledBy: "student",
		Reason:      "schedule change",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotStatus != model.StatusCancelled || gotBy != "student" || gotReason != "schedule change" {
		t.Errorf("unexpected update: status=%s by=%s reason=%s", gotStatus, gotBy, gotReason)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if got := publisher.published[0].Headers[kafka.HeaderEventType]; got != model.EventBookingCancelled {
		t.Errorf("expected event type %s, got %s", model.EventBookingCancelled, got)
	}
}

func TestCancel_PublishRetriesTransientFailure(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
	}
	publisher := &mockPublisher{failures: 2}
	now := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, publisher, now)

	err := svc.Cancel(context.Background(), "65f000000000000000000001", &model.CancelRequest{
		CancelledBy: "student",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if publisher.attempts != 3 {
		t.Errorf("expected 3 publish attempts, got %d", publisher.attempts)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected the cancelled event to land on the third attempt, got %d", len(publisher.published))
	}
	if got := publisher.published[0].Headers[kafka.HeaderEventType]; got != model.EventBookingCancelled {
		t.Errorf("expected event type %s, got %s", model.EventBookingCancelled, got)
	}
}

func TestCancel_PublishOutageDoesNotFailWrite(t *testing.T) {
	var gotStatus string
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string, cancelledBy string, reason string) error {
			gotStatus = status
			return nil
		},
	}
	publisher := &mockPublisher{failures: 10}
	now := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, publisher, now)

	err := svc.Cancel(context.Background(), "65f000000000000000000001", &model.CancelRequest{
		CancelledBy: "student",
	})
	if err != nil {
		t.Fatalf("cancellation must survive a broker outage, got %v", err)
	}

	if gotStatus != model.StatusCancelled {
		t.Errorf("expected status cancelled, got %s", gotStatus)
	}
	if publisher.attempts != 3 {
		t.Errorf("expected publish attempts bounded at 3, got %d", publisher.attempts)
	}
	if len(publisher.published) != 0 {
		t.Errorf("expected no published event during outage, got %d", len(publisher.published))
	}
}

func TestCancel_DeadlinePassedIsPolicyError(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
	}
	// Session starts 2024-06-10T10:15; 23h45m of notice is inside the deadline.
	now := time.Date(2024, 6, 9, 10, 30, 0, 0, time.UTC)
	svc := newTestService(repo, &mockPublisher{}, now)

	err := svc.Cancel(context.Background(), "65f000000000000000000001", &model.CancelRequest{
		CancelledBy: "student",
	})
	if err == nil {
		t.Fatal("expected policy error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodePolicy {
		t.Errorf("expected %s, got %v", apperrors.CodePolicy, err)
	}
}

func TestCancel_TerminalBookingIsConflict(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b := confirmedBooking()
			b.Status = model.StatusCancelled
			b.Active = false
			return b, nil
		},
	}
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &mockPublisher{}, now)

	err := svc.Cancel(context.Background(), "65f000000000000000000001", &model.CancelRequest{
		CancelledBy: "student",
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %v", apperrors.CodeConflict, err)
	}
}

func TestReschedule_Success(t *testing.T) {
	var movedDate, movedTime string
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		moveFunc: func(ctx context.Context, id string, date string, timeOfDay string) error {
			movedDate, movedTime = date, timeOfDay
			return nil
		},
	}
	publisher := &mockPublisher{}
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, publisher, now)

	booking, err := svc.Reschedule(context.Background(), "65f000000000000000000001", &model.RescheduleRequest{
		Date: "2024-06-11",
		Time: "11:30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if movedDate != "2024-06-11" || movedTime != "11:30" {
		t.Errorf("unexpected move: %s %s", movedDate, movedTime)
	}
	if booking.Date != "2024-06-11" || booking.Time != "11:30" {
		t.Errorf("returned booking not updated: %s %s", booking.Date, booking.Time)
	}
	if booking.Status != model.StatusConfirmed {
		t.Errorf("reschedule must keep the booking confirmed, got %s", booking.Status)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if got := publisher.published[0].Headers[kafka.HeaderEventType]; got != model.EventBookingRescheduled {
		t.Errorf("expected event type %s, got %s", model.EventBookingRescheduled, got)
	}
}

func TestReschedule_CanonicalizesUnpaddedTime(t *testing.T) {
	var movedTime string
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		moveFunc: func(ctx context.Context, id string, date string, timeOfDay string) error {
			movedTime = timeOfDay
			return nil
		},
	}
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &mockPublisher{}, now)

	booking, err := svc.Reschedule(context.Background(), "65f000000000000000000001", &model.RescheduleRequest{
		Date: "2024-06-11",
		Time: "9:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if movedTime != "09:00" {
		t.Errorf("expected move time 09:00, got %q", movedTime)
	}
	if booking.Time != "09:00" {
		t.Errorf("expected booking time 09:00, got %q", booking.Time)
	}
}

func TestReschedule_NewSlotTakenIsConflict(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		moveFunc: func(ctx context.Context, id string, date string, timeOfDay string) error {
			return fmt.Errorf("%w: %s %s", bookingserrors.ErrSlotTaken, date, timeOfDay)
		},
	}
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &mockPublisher{}, now)

	_, err := svc.Reschedule(context.Background(), "65f000000000000000000001", &model.RescheduleRequest{
		Date: "2024-06-11",
		Time: "11:30",
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %v", apperrors.CodeConflict, err)
	}
}

func TestComplete_IdempotentAndGuarded(t *testing.T) {
	statusUpdates := 0
	current := confirmedBooking()
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return current, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string, cancelledBy string, reason string) error {
			statusUpdates++
			current.Status = status
			return nil
		},
	}
	// Session 2024-06-10 10:15 + 60min ends 11:15; now is after that.
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &mockPublisher{}, now)

	if err := svc.Complete(context.Background(), "65f000000000000000000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Complete(context.Background(), "65f000000000000000000001"); err != nil {
		t.Fatalf("second complete should be a no-op, got %v", err)
	}
	if statusUpdates != 1 {
		t.Errorf("expected exactly one status update, got %d", statusUpdates)
	}
}

func TestComplete_BeforeSessionEndIsPolicyError(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
	}
	now := time.Date(2024, 6, 10, 10, 30, 0, 0, time.UTC)
	svc := newTestService(repo, &mockPublisher{}, now)

	err := svc.Complete(context.Background(), "65f000000000000000000001")
	if err == nil {
		t.Fatal("expected policy error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodePolicy {
		t.Errorf("expected %s, got %v", apperrors.CodePolicy, err)
	}
}
