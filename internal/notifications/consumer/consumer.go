// Package consumer maps booking lifecycle events from kafka onto the
// notification scheduler.
package consumer

import (
	"context"
	"encoding/json"

	"tutorhub/internal/notifications/scheduler"
	"tutorhub/pkg/config"
	"tutorhub/pkg/kafka"
	"tutorhub/pkg/model"
)

type BookingEventConsumer struct {
	scheduler *scheduler.Scheduler
	cfg       *config.Config
}

func NewBookingEventConsumer(scheduler *scheduler.Scheduler, cfg *config.Config) *BookingEventConsumer {
	return &BookingEventConsumer{
		scheduler: scheduler,
		cfg:       cfg,
	}
}

// Handle is the kafka message handler. Undecodable payloads and unknown
// event types are permanent failures; scheduling errors are returned as-is
// so transient storage failures get retried.
func (c *BookingEventConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.Headers[kafka.HeaderEventType]

	var event model.BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", err).
			WithDetail("event_type", eventType)
	}

	c.cfg.Log.Debug("Booking event received",
		"event_type", eventType,
		"booking_id", event.BookingID,
	)

	switch eventType {
	case model.EventBookingConfirmed:
		return c.scheduler.ScheduleForBooking(ctx, &event)
	case model.EventBookingCancelled:
		return c.scheduler.CancelForBooking(ctx, event.BookingID)
	case model.EventBookingRescheduled:
		return c.scheduler.RescheduleForBooking(ctx, &event)
	default:
		return kafka.NewPermanentError("unknown booking event type", nil).
			WithDetail("event_type", eventType)
	}
}
