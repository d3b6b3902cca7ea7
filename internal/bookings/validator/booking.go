package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tutorhub/pkg/logger"
	"tutorhub/pkg/model"
	"tutorhub/pkg/timeutil"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Reasons returns the per-field messages, for error details payloads.
func (v ValidationErrors) Reasons() []string {
	reasons := make([]string, 0, len(v))
	for _, err := range v {
		reasons = append(reasons, err.Error())
	}
	return reasons
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator", "error", err)
	}
	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := timeutil.ParseClock(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := timeutil.ParseDate(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

// ValidateBooking checks the struct tags of a booking document.
func (v *BookingValidator) ValidateBooking(b *model.Booking) error {
	if err := v.validate.Struct(b); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateStruct validates any tagged request payload.
func (v *BookingValidator) ValidateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateCreation checks a requested slot against the teacher's rules.
// Every failing condition is collected; nothing short-circuits, so the
// caller can present the complete list. Pure function of its inputs.
func (v *BookingValidator) ValidateCreation(av *model.TeacherAvailability, date string, timeOfDay string, now time.Time) error {
	var errs ValidationErrors

	days, err := timeutil.DaysUntil(date, now)
	if err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: err.Error()})
	} else {
		if days < av.MinAdvanceBookingDays {
			errs = append(errs, ValidationError{
				Field: "date",
				Message: fmt.Sprintf("booking must be made at least %d day(s) in advance (requested date is %d day(s) ahead)",
					av.MinAdvanceBookingDays, days),
			})
		}
		if days > av.MaxAdvanceBookingDays {
			errs = append(errs, ValidationError{
				Field: "date",
				Message: fmt.Sprintf("booking may be made at most %d day(s) in advance (requested date is %d day(s) ahead)",
					av.MaxAdvanceBookingDays, days),
			})
		}
	}

	weekday, weekdayErr := timeutil.WeekdayOf(date)
	if weekdayErr == nil {
		intervals := av.WeeklySchedule[weekday]
		if len(intervals) == 0 {
			errs = append(errs, ValidationError{
				Field:   "date",
				Message: fmt.Sprintf("teacher has no availability on %s", weekday),
			})
		} else if minutes, err := timeutil.ParseClock(timeOfDay); err != nil {
			errs = append(errs, ValidationError{Field: "time", Message: err.Error()})
		} else if !timeutil.WithinIntervals(intervals, minutes) {
			errs = append(errs, ValidationError{
				Field:   "time",
				Message: fmt.Sprintf("%s is outside the teacher's availability on %s", timeOfDay, weekday),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateModification checks cancel/reschedule eligibility: the policy
// flag must allow the action, and the session must still be at least
// deadlineHours away. The hour difference is real-valued, so a session
// 23h59m out fails a 24h deadline. Single pass/fail with a reason.
func (v *BookingValidator) ValidateModification(action string, allowed bool, deadlineHours int, sessionStart time.Time, now time.Time) error {
	if !allowed {
		return fmt.Errorf("%s is not permitted by the teacher's policy", action)
	}

	hours := timeutil.HoursUntil(sessionStart, now)
	if hours < float64(deadlineHours) {
		return fmt.Errorf("%s deadline passed: session starts in %.2f hour(s), policy requires at least %d hour(s) notice",
			action, hours, deadlineHours)
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "calendar_date":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		case "time_of_day":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
