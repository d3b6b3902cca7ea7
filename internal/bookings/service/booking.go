package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "tutorhub/internal/bookings/errors"
	"tutorhub/internal/bookings/repository"
	bookingvalidator "tutorhub/internal/bookings/validator"
	"tutorhub/pkg/config"
	apperrors "tutorhub/pkg/errors"
	"tutorhub/pkg/kafka"
	"tutorhub/pkg/model"
	"tutorhub/pkg/sanitizer"
	"tutorhub/pkg/timeutil"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByTeacher(ctx context.Context, teacherID string, fromDate string, toDate string, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, id string, req *model.CancelRequest) error
	Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error)
	Complete(ctx context.Context, id string) error
}

// AvailabilityProvider yields the teacher's booking rules, creating the
// documented defaults for teachers without a record.
type AvailabilityProvider interface {
	GetForTeacher(ctx context.Context, teacherID string) (*model.TeacherAvailability, error)
}

// EventPublisher is the slice of the kafka producer the lifecycle needs.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type bookingService struct {
	repo         repository.BookingRepository
	availability AvailabilityProvider
	validator    *bookingvalidator.BookingValidator
	publisher    EventPublisher
	cfg          *config.Config
	now          func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	availability AvailabilityProvider,
	validator *bookingvalidator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		availability: availability,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the requested slot and inserts the booking. The insert
// itself is the conflict check: the unique partial index over active
// (teacher_id, date, time) documents rejects the loser of a race, which
// surfaces here as a Conflict. A read-then-write check would double-book
// under load.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.sanitize(booking)
	booking.Status = model.StatusConfirmed

	av, err := s.availability.GetForTeacher(ctx, booking.TeacherID)
	if err != nil {
		return err
	}
	if booking.DurationMin == 0 {
		booking.DurationMin = av.SlotDurationMin
	}

	if err := s.validator.ValidateBooking(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"teacher_id", booking.TeacherID,
			"student_id", booking.StudentID,
			"error", err,
		)
		return validationError(err)
	}

	if err := s.validator.ValidateCreation(av, booking.Date, booking.Time, s.now()); err != nil {
		s.cfg.Log.Warn("Booking slot validation failed",
			"teacher_id", booking.TeacherID,
			"date", booking.Date,
			"time", booking.Time,
			"error", err,
		)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			return apperrors.Conflict("Slot is already booked")
		}
		s.cfg.Log.Error("Failed to create booking",
			"teacher_id", booking.TeacherID,
			"date", booking.Date,
			"time", booking.Time,
			"error", err,
		)
		return apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"teacher_id", booking.TeacherID,
		"student_id", booking.StudentID,
		"date", booking.Date,
		"time", booking.Time,
	)

	s.publishEvent(ctx, model.EventBookingConfirmed, booking)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) ListByTeacher(ctx context.Context, teacherID string, fromDate string, toDate string, limit int, offset int64) ([]*model.Booking, int64, error) {
	teacherID = sanitizer.NormalizeID(teacherID)
	if teacherID == "" {
		return nil, 0, apperrors.InvalidInput("Teacher ID cannot be empty")
	}
	for _, d := range []string{fromDate, toDate} {
		if d == "" {
			continue
		}
		if _, err := timeutil.ParseDate(d); err != nil {
			return nil, 0, apperrors.InvalidInput(err.Error())
		}
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByTeacher(sharedCtx, teacherID, fromDate, toDate)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "teacher_id", teacherID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByTeacher(sharedCtx, teacherID, fromDate, toDate, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"teacher_id", teacherID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, count, nil
}

// Cancel is a terminal transition: confirmed (or pending) to cancelled.
// The teacher's cancellation policy is enforced against the real-valued
// hour distance to the session start.
func (s *bookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) error {
	if err := s.validator.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.IsTerminal() {
		return apperrors.Conflict("Booking is already " + booking.Status)
	}

	av, err := s.availability.GetForTeacher(ctx, booking.TeacherID)
	if err != nil {
		return err
	}

	sessionStart, err := timeutil.Combine(booking.Date, booking.Time)
	if err != nil {
		return apperrors.Internal("Booking has an invalid date or time", err)
	}

	if err := s.validator.ValidateModification("cancellation", av.AllowCancellation, av.CancellationDeadlineHours, sessionStart, s.now()); err != nil {
		s.cfg.Log.Warn("Cancellation rejected by policy",
			"id", id,
			"error", err,
		)
		return apperrors.Policy(err.Error(), map[string]any{
			"booking_id": id,
		})
	}

	reason := sanitizer.TrimAndNormalize(req.Reason)
	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled, req.CancelledBy, reason); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to cancel booking",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled successfully",
		"id", id,
		"cancelled_by", req.CancelledBy,
	)

	booking.Status = model.StatusCancelled
	booking.CancelledBy = req.CancelledBy
	booking.CancellationReason = reason
	s.publishEvent(ctx, model.EventBookingCancelled, booking)
	return nil
}

// Reschedule keeps the booking confirmed and moves its date/time. The new
// slot passes the same creation validation as a fresh booking, and the
// move relies on the unique index for conflict safety.
func (s *bookingService) Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.Time = normalizeClock(req.Time)

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, apperrors.Conflict("Booking is already " + booking.Status)
	}

	av, err := s.availability.GetForTeacher(ctx, booking.TeacherID)
	if err != nil {
		return nil, err
	}

	sessionStart, err := timeutil.Combine(booking.Date, booking.Time)
	if err != nil {
		return nil, apperrors.Internal("Booking has an invalid date or time", err)
	}

	if err := s.validator.ValidateModification("rescheduling", av.AllowRescheduling, av.ReschedulingDeadlineHours, sessionStart, s.now()); err != nil {
		s.cfg.Log.Warn("Reschedule rejected by policy",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Policy(err.Error(), map[string]any{
			"booking_id": id,
		})
	}

	if err := s.validator.ValidateCreation(av, req.Date, req.Time, s.now()); err != nil {
		s.cfg.Log.Warn("Reschedule slot validation failed",
			"id", id,
			"date", req.Date,
			"time", req.Time,
			"error", err,
		)
		return nil, validationError(err)
	}

	if req.Date == booking.Date && req.Time == booking.Time {
		return booking, nil
	}

	// The state re-check and the move share a session so a cancellation
	// landing between our read and the move cannot resurrect the booking
	// into a new slot.
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongodriver.SessionContext) error {
		current, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return err
		}
		if current.IsTerminal() {
			return apperrors.Conflict("Booking is already " + current.Status)
		}
		return s.repo.Move(sessCtx, id, req.Date, req.Time)
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			return nil, apperrors.Conflict("Slot is already booked")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to reschedule booking",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to reschedule booking", err)
	}

	s.cfg.Log.Info("Booking rescheduled successfully",
		"id", id,
		"old_date", booking.Date,
		"old_time", booking.Time,
		"new_date", req.Date,
		"new_time", req.Time,
	)

	booking.Date = req.Date
	booking.Time = req.Time
	s.publishEvent(ctx, model.EventBookingRescheduled, booking)
	return booking, nil
}

// Complete is the system-triggered terminal transition once the session
// end time has passed. Completing an already-completed booking is a no-op.
func (s *bookingService) Complete(ctx context.Context, id string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status == model.StatusCompleted {
		return nil
	}
	if booking.Status != model.StatusConfirmed {
		return apperrors.Conflict("Only confirmed bookings can be completed, booking is " + booking.Status)
	}

	sessionStart, err := timeutil.Combine(booking.Date, booking.Time)
	if err != nil {
		return apperrors.Internal("Booking has an invalid date or time", err)
	}
	sessionEnd := sessionStart.Add(time.Duration(booking.DurationMin) * time.Minute)
	if s.now().Before(sessionEnd) {
		return apperrors.Policy("Session has not ended yet", map[string]any{
			"booking_id":  id,
			"session_end": sessionEnd,
		})
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCompleted, "", ""); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to complete booking",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to complete booking", err)
	}

	s.cfg.Log.Info("Booking completed", "id", id)
	return nil
}

// publishRetries bounds the service-level publish attempts; the producer
// itself retries each attempt per its MaxAttempts before giving up.
const publishRetries = 3

// publishEvent emits a lifecycle event for the notifications service.
// Publishing is best-effort relative to the committed write: the booking
// state is already durable, so a broker outage is retried a few times and
// then logged, not surfaced. Cancelled events matter most here, since a
// lost one leaves stale reminders pending until an operator reconciles.
func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	event := model.BookingEvent{
		BookingID:          booking.ID,
		TeacherID:          booking.TeacherID,
		StudentID:          booking.StudentID,
		TeacherName:        booking.TeacherName,
		StudentName:        booking.StudentName,
		StudentEmail:       booking.StudentEmail,
		Subject:            booking.Subject,
		Date:               booking.Date,
		Time:               booking.Time,
		DurationMin:        booking.DurationMin,
		CancelledBy:        booking.CancelledBy,
		CancellationReason: booking.CancellationReason,
		OccurredAt:         s.now(),
	}

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSource("bookings").
		Build()

	var err error
	for attempt := 1; attempt <= publishRetries; attempt++ {
		if err = s.publisher.Publish(ctx, msg); err == nil {
			return
		}
		s.cfg.Log.Warn("Booking event publish failed",
			"event_type", eventType,
			"booking_id", booking.ID,
			"attempt", attempt,
			"error", err,
		)
	}
	s.cfg.Log.Error("Failed to publish booking event, giving up",
		"event_type", eventType,
		"booking_id", booking.ID,
		"attempts", publishRetries,
		"error", err,
	)
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.TeacherID = sanitizer.NormalizeID(b.TeacherID)
	b.StudentID = sanitizer.NormalizeID(b.StudentID)
	b.TeacherName = sanitizer.NormalizeName(b.TeacherName)
	b.StudentName = sanitizer.NormalizeName(b.StudentName)
	b.StudentEmail = sanitizer.NormalizeEmail(b.StudentEmail)
	b.Subject = sanitizer.TrimAndNormalize(b.Subject)
	b.Notes = sanitizer.TrimAndNormalize(b.Notes)
	b.Date = sanitizer.TrimAndNormalize(b.Date)
	b.Time = normalizeClock(b.Time)
}

// normalizeClock canonicalizes a time of day to padded "HH:MM" so the
// stored string, the unique index key and slot comparisons all agree.
// Unparseable input is passed through for the validator to reject.
func normalizeClock(s string) string {
	s = sanitizer.TrimAndNormalize(s)
	if canonical, err := timeutil.NormalizeClock(s); err == nil {
		return canonical
	}
	return s
}

func validationError(err error) error {
	var verrs bookingvalidator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Booking validation failed", map[string]any{
			"reasons": verrs.Reasons(),
		})
	}
	return apperrors.Validation("Booking validation failed", map[string]any{
		"error": err.Error(),
	})
}
