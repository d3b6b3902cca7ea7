package service

import (
	"fmt"

	availabilityerrors "tutorhub/internal/availability/errors"
	"tutorhub/pkg/model"
	"tutorhub/pkg/timeutil"
)

// GenerateSlots expands a weekly schedule into the ordered candidate slots
// of one calendar date. Within each interval the walk advances in steps of
// slot duration plus buffer, emitting [t, t+duration) while the slot still
// fits before the interval end. A slot is unavailable when an existing
// booking starts at the same time. A weekday without intervals yields no
// slots and no error; an interval whose start is not strictly before its
// end is a configuration error.
func GenerateSlots(av *model.TeacherAvailability, date string, bookings []*model.Booking) ([]model.Slot, error) {
	weekday, err := timeutil.WeekdayOf(date)
	if err != nil {
		return nil, err
	}

	// Keys are canonical "HH:MM" so a stored "9:00" still blocks the
	// "09:00" candidate.
	booked := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		start := b.Time
		if canonical, err := timeutil.NormalizeClock(start); err == nil {
			start = canonical
		}
		booked[start] = struct{}{}
	}

	step := av.SlotDurationMin + av.BufferTimeMin

	slots := []model.Slot{}
	for _, interval := range av.WeeklySchedule[weekday] {
		start, err := timeutil.ParseClock(interval.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %v", availabilityerrors.ErrMalformedInterval, weekday, err)
		}
		end, err := timeutil.ParseClock(interval.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %v", availabilityerrors.ErrMalformedInterval, weekday, err)
		}
		if start >= end {
			return nil, fmt.Errorf("%w: %s interval [%s, %s)",
				availabilityerrors.ErrMalformedInterval, weekday, interval.Start, interval.End)
		}

		for t := start; t+av.SlotDurationMin <= end; t += step {
			slotStart := timeutil.FormatClock(t)
			_, taken := booked[slotStart]
			slots = append(slots, model.Slot{
				Start:     slotStart,
				End:       timeutil.FormatClock(t + av.SlotDurationMin),
				Available: !taken,
			})
		}
	}

	return slots, nil
}
