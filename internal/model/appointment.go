package model

import "time"

// Appointment statuses.
const (
	AppointmentScheduled   = "scheduled"
	AppointmentRescheduled = "rescheduled"
	AppointmentCancelled   = "cancelled"
	AppointmentFulfilled   = "fulfilled"
)

// Appointment is a scheduled or consequential donation event.  It is
// created either directly by a user scheduling a visit, or
// synthetically by the request lifecycle manager when a request is
// fulfilled.  Both UserID and DonorID are nullable because either
// side of the relation may be unknown: user-scheduled appointments
// have no donor, and synthetic fulfillment appointments may not
// resolve to a user account.
//
// Fields:
//  ID        primary key identifier.
//  UserID    account the appointment belongs to (nil if none).
//  DonorID   donor the appointment concerns (nil if none).
//  Date      when the donation takes place.
//  Status    scheduled, rescheduled, cancelled or fulfilled.
//  Reason    free-text reason supplied when scheduling.
//  CreatedAt creation timestamp.
type Appointment struct {
	ID        uint64    // appointments.id
	UserID    *uint64   // appointments.user_id (nullable)
	DonorID   *uint64   // appointments.donor_id (nullable)
	Date      time.Time // appointments.date
	Status    string    // appointments.status
	Reason    string    // appointments.reason
	CreatedAt time.Time // appointments.created_at
}
