// Package timeutil holds the shared minute-precision date and time-of-day
// helpers used by slot generation, validation and reminder scheduling.
// Calendar dates are "2006-01-02" strings, times of day "HH:MM" strings;
// all absolute instants are UTC.
package timeutil

import (
	"fmt"
	"regexp"
	"time"

	"tutorhub/pkg/model"
)

const (
	DateLayout = "2006-01-02"

	MinutesPerDay = 24 * 60
)

var clockRegex = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseDate parses a calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected format %s", s, DateLayout)
	}
	return t, nil
}

// ParseClock parses an "HH:MM" time of day into minutes since midnight.
// A missing leading zero is accepted ("9:00").
func ParseClock(s string) (int, error) {
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	var h, min int
	fmt.Sscanf(m[1], "%d", &h)
	fmt.Sscanf(m[2], "%d", &min)
	return h*60 + min, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock re-renders a time of day in canonical zero-padded "HH:MM"
// form. Storage and comparisons key on the raw string, so "9:00" and
// "09:00" must collapse to one representation before either.
func NormalizeClock(s string) (string, error) {
	minutes, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(minutes), nil
}

// Combine resolves a calendar date plus a time of day into a UTC instant.
func Combine(date string, clock string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// DaysUntil returns the whole calendar-day difference between a date and
// now, ignoring the time of day on both sides. Zero means today, negative
// means the date already passed.
func DaysUntil(date string, now time.Time) (int, error) {
	day, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return int(day.Sub(today).Hours() / 24), nil
}

// HoursUntil returns the real-valued hour difference t minus now, so a session
// 23h59m away is strictly less than 24.
func HoursUntil(t time.Time, now time.Time) float64 {
	return t.Sub(now).Hours()
}

// WithinIntervals reports whether a time of day, in minutes since
// midnight, lands inside one of the intervals, half-open on the right.
// Malformed intervals never match.
func WithinIntervals(intervals []model.TimeInterval, minutes int) bool {
	for _, interval := range intervals {
		start, err := ParseClock(interval.Start)
		if err != nil {
			continue
		}
		end, err := ParseClock(interval.End)
		if err != nil {
			continue
		}
		if minutes >= start && minutes < end {
			return true
		}
	}
	return false
}

// WeekdayOf returns the model weekday ("Monday"...) of a calendar date.
func WeekdayOf(date string) (model.Weekday, error) {
	day, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return model.Weekday(day.Weekday().String()), nil
}
