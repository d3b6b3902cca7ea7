package service

import (
	"context"
	"errors"

	availabilityerrors "tutorhub/internal/availability/errors"
	"tutorhub/internal/availability/repository"
	"tutorhub/internal/availability/validator"
	"tutorhub/pkg/config"
	apperrors "tutorhub/pkg/errors"
	"tutorhub/pkg/model"
	"tutorhub/pkg/sanitizer"
	"tutorhub/pkg/timeutil"
)

type AvailabilityService interface {
	GetForTeacher(ctx context.Context, teacherID string) (*model.TeacherAvailability, error)
	Update(ctx context.Context, teacherID string, av *model.TeacherAvailability) (*model.TeacherAvailability, error)
	DaySlots(ctx context.Context, teacherID string, date string) ([]model.Slot, error)
}

// BookingFinder is the slice of the booking repository slot listing needs:
// the active (pending or confirmed) bookings of a teacher on one date.
type BookingFinder interface {
	FindActiveByTeacherAndDate(ctx context.Context, teacherID string, date string) ([]*model.Booking, error)
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	bookings  BookingFinder
	validator *validator.AvailabilityValidator
	cfg       *config.Config
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	bookings BookingFinder,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

// GetForTeacher returns the teacher's availability, creating and
// persisting the documented defaults on first access.
func (s *availabilityService) GetForTeacher(ctx context.Context, teacherID string) (*model.TeacherAvailability, error) {
	teacherID = sanitizer.NormalizeID(teacherID)
	if teacherID == "" {
		return nil, apperrors.InvalidInput("Teacher ID cannot be empty")
	}

	av, err := s.repo.FindByTeacherID(ctx, teacherID)
	if err == nil {
		return av, nil
	}
	if !errors.Is(err, availabilityerrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to get availability",
			"teacher_id", teacherID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}

	defaults := s.defaultAvailability(teacherID)
	if err := s.repo.Upsert(ctx, defaults); err != nil {
		s.cfg.Log.Error("Failed to persist default availability",
			"teacher_id", teacherID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create default availability", err)
	}

	s.cfg.Log.Info("Default availability created",
		"teacher_id", teacherID,
		"slot_duration_min", defaults.SlotDurationMin,
		"buffer_time_min", defaults.BufferTimeMin,
	)
	return defaults, nil
}

func (s *availabilityService) Update(ctx context.Context, teacherID string, av *model.TeacherAvailability) (*model.TeacherAvailability, error) {
	teacherID = sanitizer.NormalizeID(teacherID)
	if teacherID == "" {
		return nil, apperrors.InvalidInput("Teacher ID cannot be empty")
	}

	av.TeacherID = teacherID
	s.sanitize(av)

	if err := s.validator.Validate(av); err != nil {
		s.cfg.Log.Warn("Availability validation failed",
			"teacher_id", teacherID,
			"error", err,
		)
		return nil, apperrors.Validation("Availability validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if existing, err := s.repo.FindByTeacherID(ctx, teacherID); err == nil {
		av.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, availabilityerrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check availability existence", err)
	}

	if err := s.repo.Upsert(ctx, av); err != nil {
		s.cfg.Log.Error("Failed to update availability",
			"teacher_id", teacherID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update availability", err)
	}

	s.cfg.Log.Info("Availability updated successfully",
		"teacher_id", teacherID,
		"weekdays", len(av.WeeklySchedule),
	)
	return av, nil
}

// DaySlots expands the teacher's weekly schedule into the candidate slots of
// one calendar date, marking slots taken by active bookings as unavailable.
func (s *availabilityService) DaySlots(ctx context.Context, teacherID string, date string) ([]model.Slot, error) {
	teacherID = sanitizer.NormalizeID(teacherID)
	if teacherID == "" {
		return nil, apperrors.InvalidInput("Teacher ID cannot be empty")
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	av, err := s.GetForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	booked, err := s.bookings.FindActiveByTeacherAndDate(ctx, teacherID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for slot listing",
			"teacher_id", teacherID,
			"date", date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load existing bookings", err)
	}

	slots, err := GenerateSlots(av, date, booked)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrMalformedInterval) {
			return nil, apperrors.Validation("Availability configuration is invalid", map[string]any{
				"error": err.Error(),
			})
		}
		return nil, apperrors.Internal("Failed to generate slots", err)
	}

	s.cfg.Log.Debug("Slots generated",
		"teacher_id", teacherID,
		"date", date,
		"count", len(slots),
	)
	return slots, nil
}

// sanitize canonicalizes interval bounds to padded "HH:MM"; unparseable
// values pass through for the validator to reject.
func (s *availabilityService) sanitize(av *model.TeacherAvailability) {
	for weekday, intervals := range av.WeeklySchedule {
		for i := range intervals {
			intervals[i].Start = normalizeClock(intervals[i].Start)
			intervals[i].End = normalizeClock(intervals[i].End)
		}
		av.WeeklySchedule[weekday] = intervals
	}
}

func normalizeClock(s string) string {
	s = sanitizer.TrimAndNormalize(s)
	if canonical, err := timeutil.NormalizeClock(s); err == nil {
		return canonical
	}
	return s
}

func (s *availabilityService) defaultAvailability(teacherID string) *model.TeacherAvailability {
	schedule := make(map[model.Weekday][]model.TimeInterval, len(config.DefaultWorkingDays))
	for _, day := range config.DefaultWorkingDays {
		schedule[model.Weekday(day)] = []model.TimeInterval{
			{Start: s.cfg.DefaultStartOfDay, End: s.cfg.DefaultEndOfDay},
		}
	}

	return &model.TeacherAvailability{
		TeacherID:                 teacherID,
		WeeklySchedule:            schedule,
		SlotDurationMin:           s.cfg.DefaultSlotDurationMin,
		BufferTimeMin:             s.cfg.DefaultBufferTimeMin,
		MinAdvanceBookingDays:     s.cfg.DefaultMinAdvanceDays,
		MaxAdvanceBookingDays:     s.cfg.DefaultMaxAdvanceDays,
		AllowCancellation:         true,
		CancellationDeadlineHours: s.cfg.DefaultDeadlineHours,
		AllowRescheduling:         true,
		ReschedulingDeadlineHours: s.cfg.DefaultDeadlineHours,
	}
}
