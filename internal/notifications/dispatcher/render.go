package dispatcher

import (
	"fmt"

	"tutorhub/internal/notifications/gateway"
	"tutorhub/pkg/model"
)

// renderEmail builds the outgoing message from the record's data snapshot.
// Wording is deliberately plain; the gateway owns real templating.
func renderEmail(record *model.NotificationRecord) gateway.Email {
	data := record.Data
	session := fmt.Sprintf("%s session with %s on %s at %s",
		data["subject"], data["teacher_name"], data["date"], data["time"])

	var subject, body string
	switch record.Type {
	case model.NotificationBookingConfirmation:
		subject = "Booking confirmed: " + data["subject"]
		body = fmt.Sprintf("Hi %s, your %s is confirmed (%s minutes).",
			data["student_name"], session, data["duration_min"])
	case model.NotificationReminder24h:
		subject = "Reminder: your session is tomorrow"
		body = fmt.Sprintf("Hi %s, a reminder about your %s.",
			data["student_name"], session)
	case model.NotificationReminderSameDay:
		subject = "Reminder: your session starts soon"
		body = fmt.Sprintf("Hi %s, your %s starts soon.",
			data["student_name"], session)
	default:
		subject = "Notification from TutorHub"
		body = fmt.Sprintf("Hi %s, an update about your %s.",
			data["student_name"], session)
	}

	return gateway.Email{
		To:      record.UserEmail,
		Subject: subject,
		Body:    body,
	}
}
