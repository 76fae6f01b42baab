// Package jobs holds background work triggered by administrators.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/lifelink/blood-donation-api/internal/notify"
	"github.com/lifelink/blood-donation-api/internal/repository"
)

// AppointmentSource is the slice of the appointment repository the
// reminder job needs.
type AppointmentSource interface {
	ListUpcomingBetween(ctx context.Context, from, to time.Time) ([]repository.AppointmentWithNames, error)
}

// ReminderJob emails every user with a scheduled or rescheduled
// appointment tomorrow. Individual send failures are counted but do
// not stop the run.
type ReminderJob struct {
	Appointments AppointmentSource
	Sender       notify.Sender

	now func() time.Time
}

func NewReminderJob(appointments AppointmentSource, sender notify.Sender) *ReminderJob {
	return &ReminderJob{
		Appointments: appointments,
		Sender:       sender,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run sends reminders for tomorrow's appointments and returns how many
// were sent and how many failed.
func (j *ReminderJob) Run(ctx context.Context) (sent, failed int, err error) {
	now := j.now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	dayAfter := tomorrow.AddDate(0, 0, 1)

	appts, err := j.Appointments.ListUpcomingBetween(ctx, tomorrow, dayAfter)
	if err != nil {
		return 0, 0, err
	}

	for _, appt := range appts {
		if appt.UserEmail == nil || *appt.UserEmail == "" {
			continue
		}
		name := "Donor"
		if appt.UserName != nil && *appt.UserName != "" {
			name = *appt.UserName
		}
		subject, body := notify.ReminderMessage(name, appt.Date)
		if ok := j.Sender.Send(ctx, *appt.UserEmail, subject, body, name); ok {
			sent++
		} else {
			log.Printf("reminder: send to %s failed", *appt.UserEmail)
			failed++
		}
	}
	return sent, failed, nil
}
