// Package scheduler turns booking lifecycle events into persisted
// notification records with absolute fire times.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tutorhub/internal/notifications/repository"
	"tutorhub/pkg/config"
	"tutorhub/pkg/model"
	"tutorhub/pkg/timeutil"
)

const (
	reminderDayBefore = 24 * time.Hour
	reminderSameDay   = 2 * time.Hour
)

type Scheduler struct {
	repo repository.NotificationRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewScheduler(repo repository.NotificationRepository, cfg *config.Config) *Scheduler {
	return &Scheduler{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ScheduleForBooking persists the confirmation and the two reminder
// records for a confirmed booking. Fire times already in the past are
// persisted unchanged: the dispatcher's due query picks them up on its
// next run, degrading to send-as-soon-as-possible rather than skipping.
func (s *Scheduler) ScheduleForBooking(ctx context.Context, event *model.BookingEvent) error {
	sessionStart, err := timeutil.Combine(event.Date, event.Time)
	if err != nil {
		return fmt.Errorf("booking %s has invalid date or time: %w", event.BookingID, err)
	}

	data := snapshot(event)
	records := []*model.NotificationRecord{
		s.record(event, model.NotificationBookingConfirmation, s.now(), data),
		s.record(event, model.NotificationReminder24h, sessionStart.Add(-reminderDayBefore), data),
		s.record(event, model.NotificationReminderSameDay, sessionStart.Add(-reminderSameDay), data),
	}

	for _, record := range records {
		if err := s.repo.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to schedule %s for booking %s: %w", record.Type, event.BookingID, err)
		}
	}

	s.cfg.Log.Info("Notifications scheduled",
		"booking_id", event.BookingID,
		"count", len(records),
		"session_start", sessionStart,
	)
	return nil
}

// CancelForBooking cancels every pending record of the booking.
func (s *Scheduler) CancelForBooking(ctx context.Context, bookingID string) error {
	cancelled, err := s.repo.CancelByBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to cancel notifications for booking %s: %w", bookingID, err)
	}

	s.cfg.Log.Info("Notifications cancelled",
		"booking_id", bookingID,
		"count", cancelled,
	)
	return nil
}

// RescheduleForBooking cancels the pending reminders tied to the old slot
// and schedules fresh ones from the new date and time, so no stale
// reminder ever fires.
func (s *Scheduler) RescheduleForBooking(ctx context.Context, event *model.BookingEvent) error {
	if err := s.CancelForBooking(ctx, event.BookingID); err != nil {
		return err
	}

	sessionStart, err := timeutil.Combine(event.Date, event.Time)
	if err != nil {
		return fmt.Errorf("booking %s has invalid date or time: %w", event.BookingID, err)
	}

	data := snapshot(event)
	records := []*model.NotificationRecord{
		s.record(event, model.NotificationReminder24h, sessionStart.Add(-reminderDayBefore), data),
		s.record(event, model.NotificationReminderSameDay, sessionStart.Add(-reminderSameDay), data),
	}

	for _, record := range records {
		if err := s.repo.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to reschedule %s for booking %s: %w", record.Type, event.BookingID, err)
		}
	}

	s.cfg.Log.Info("Notifications rescheduled",
		"booking_id", event.BookingID,
		"session_start", sessionStart,
	)
	return nil
}

func (s *Scheduler) record(event *model.BookingEvent, notificationType string, scheduledFor time.Time, data map[string]string) *model.NotificationRecord {
	return &model.NotificationRecord{
		Type:         notificationType,
		BookingID:    event.BookingID,
		UserID:       event.StudentID,
		UserEmail:    event.StudentEmail,
		ScheduledFor: scheduledFor.UTC(),
		Sent:         false,
		Cancelled:    false,
		Data:         data,
	}
}

// snapshot captures everything needed to render the message at scheduling
// time; later booking mutation never rewrites an already-scheduled text.
func snapshot(event *model.BookingEvent) map[string]string {
	return map[string]string{
		"teacher_name": event.TeacherName,
		"student_name": event.StudentName,
		"subject":      event.Subject,
		"date":         event.Date,
		"time":         event.Time,
		"duration_min": strconv.Itoa(event.DurationMin),
	}
}
