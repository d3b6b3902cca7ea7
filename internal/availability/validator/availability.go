package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

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

var validWeekdays = map[model.Weekday]struct{}{
	model.Sunday: {}, model.Monday: {}, model.Tuesday: {}, model.Wednesday: {},
	model.Thursday: {}, model.Friday: {}, model.Saturday: {},
}

type AvailabilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	v := validator.New()

	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator", "error", err)
	}

	log.Info("Availability validator initialized successfully")

	return &AvailabilityValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := timeutil.ParseClock(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

// Validate checks struct tags first, then the cross-field rules the tags
// cannot express: interval ordering and disjointness per weekday, and the
// advance-window bounds.
func (v *AvailabilityValidator) Validate(av *model.TeacherAvailability) error {
	if err := v.validate.Struct(av); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var validationErrors ValidationErrors

	if av.MinAdvanceBookingDays > av.MaxAdvanceBookingDays {
		validationErrors = append(validationErrors, ValidationError{
			Field: "min_advance_booking_days",
			Message: fmt.Sprintf("min_advance_booking_days (%d) must not exceed max_advance_booking_days (%d)",
				av.MinAdvanceBookingDays, av.MaxAdvanceBookingDays),
		})
	}

	for weekday, intervals := range av.WeeklySchedule {
		if _, ok := validWeekdays[weekday]; !ok {
			validationErrors = append(validationErrors, ValidationError{
				Field:   "weekly_schedule",
				Message: fmt.Sprintf("%q is not a valid weekday name", weekday),
			})
			continue
		}
		validationErrors = append(validationErrors, validateIntervals(weekday, intervals)...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

func validateIntervals(weekday model.Weekday, intervals []model.TimeInterval) ValidationErrors {
	var errs ValidationErrors

	type span struct {
		start, end int
	}
	spans := make([]span, 0, len(intervals))

	for _, iv := range intervals {
		start, err := timeutil.ParseClock(iv.Start)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   string(weekday),
				Message: err.Error(),
			})
			continue
		}
		end, err := timeutil.ParseClock(iv.End)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   string(weekday),
				Message: err.Error(),
			})
			continue
		}
		if start >= end {
			errs = append(errs, ValidationError{
				Field:   string(weekday),
				Message: fmt.Sprintf("interval start %s must be before end %s", iv.Start, iv.End),
			})
			continue
		}
		spans = append(spans, span{start: start, end: end})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			errs = append(errs, ValidationError{
				Field: string(weekday),
				Message: fmt.Sprintf("intervals overlap: [%s, %s) and [%s, %s)",
					timeutil.FormatClock(spans[i-1].start), timeutil.FormatClock(spans[i-1].end),
					timeutil.FormatClock(spans[i].start), timeutil.FormatClock(spans[i].end)),
			})
		}
	}

	return errs
}

func (v *AvailabilityValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
