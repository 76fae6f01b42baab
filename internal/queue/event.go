// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// EmailQueueName is the durable queue carrying outbound email events.
const EmailQueueName = "email.outbound"

// EmailEvent is published whenever the application wants to send an
// email: request status changes, verification codes and appointment
// reminders. It carries everything the delivery worker needs without
// querying the primary database.
type EmailEvent struct {
	ID            string `json:"id"`
	To            string `json:"to"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	RecipientName string `json:"recipient_name"`
	QueuedAt      string `json:"queued_at"`
}
