package notify

import (
	"fmt"
	"time"

	"github.com/lifelink/blood-donation-api/internal/model"
)

// StatusMessage composes the subject and HTML body for a request
// status notification. Each status has a distinct template.
func StatusMessage(status, requesterName, bloodGroup string, quantity uint32) (subject, body string) {
	switch status {
	case model.RequestFulfilled:
		subject = "Your Blood Request Has Been Fulfilled"
		body = wrap(subject, requesterName, fmt.Sprintf(
			"<p>Good news! Your request for %d unit(s) of %s blood has been fulfilled. "+
				"A donor has been matched and the donation has been recorded.</p>",
			quantity, bloodGroup))
	case model.RequestCancelled:
		subject = "Your Blood Request Has Been Cancelled"
		body = wrap(subject, requesterName, fmt.Sprintf(
			"<p>Your request for %d unit(s) of %s blood has been cancelled. "+
				"If this was unexpected, please contact our support team.</p>",
			quantity, bloodGroup))
	default: // pending
		subject = "Your Blood Request Is Pending"
		body = wrap(subject, requesterName, fmt.Sprintf(
			"<p>Your request for %d unit(s) of %s blood has been moved back to pending "+
				"and is awaiting a donor match.</p>",
			quantity, bloodGroup))
	}
	return subject, body
}

// VerificationMessage composes the subject and HTML body for a
// verification-code email. The code expires after five minutes.
func VerificationMessage(code string) (subject, body string) {
	subject = "Verification Code"
	body = fmt.Sprintf(
		"<p>Your verification code is:</p>"+
			"<div style=\"font-size:28px;font-weight:bold;\">%s</div>"+
			"<p>This code will expire in 5 minutes.</p>"+
			"<p>If you didn't request this code, please ignore this email.</p>",
		code)
	return subject, body
}

// ReminderMessage composes the subject and HTML body for an
// appointment reminder.
func ReminderMessage(recipientName string, date time.Time) (subject, body string) {
	subject = "Appointment Reminder"
	body = wrap(subject, recipientName, fmt.Sprintf(
		"<p>This is a reminder that you have a blood donation appointment scheduled for "+
			"<strong>%s</strong>.</p>"+
			"<p>If you need to reschedule or cancel, please log in to your account.</p>"+
			"<p>Thank you for your life-saving contribution!</p>",
		date.Format("Monday, 2 January 2006 at 15:04")))
	return subject, body
}

// wrap applies the shared outer layout used by every notification.
func wrap(heading, recipientName, inner string) string {
	if recipientName == "" {
		recipientName = "User"
	}
	return fmt.Sprintf(
		"<div style=\"font-family:Arial,sans-serif;max-width:600px;margin:0 auto;\">"+
			"<h2>Blood Donation System</h2>"+
			"<h3>%s</h3>"+
			"<p>Hello %s,</p>%s"+
			"<p>Thank you for using our Blood Donation System.<br>"+
			"This is an automated message, please do not reply.</p>"+
			"</div>",
		heading, recipientName, inner)
}
