// Package lifecycle implements the request-fulfillment state machine.
// A blood request moves between pending, fulfilled and cancelled, and
// transitions into or out of fulfilled cascade into donor statistics,
// appointment records, outbound notification and the audit trail.
//
// Only the primary status update is allowed to fail the operation.
// Every cascading step is best-effort: its failure is logged and
// swallowed so the committed status change is still reported to the
// caller. The manager holds no state of its own; all state lives in
// the record store and each operation is a read-modify-write.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lifelink/blood-donation-api/internal/model"
	"github.com/lifelink/blood-donation-api/internal/notify"
)

// ErrInvalidStatus is returned when the target status is not one of
// pending, fulfilled or cancelled.
var ErrInvalidStatus = errors.New("invalid status value")

// Actor is the authenticated identity performing an administrative
// mutation, as supplied by the JWT middleware. The manager trusts it
// without re-validating credentials.
type Actor struct {
	ID    uint64
	Email string
	Role  string
}

// RequestStore is the slice of the record store the manager needs for
// requests themselves.
type RequestStore interface {
	Create(ctx context.Context, name, email, bloodGroup string, quantity uint32) (model.Request, error)
	GetByID(ctx context.Context, id uint64) (model.Request, error)
	UpdateStatus(ctx context.Context, id uint64, status string, fulfilledBy *uint64) error
	Delete(ctx context.Context, id uint64) error
}

// DonorStore reads and updates donor donation statistics.
type DonorStore interface {
	GetByID(ctx context.Context, id uint64) (model.Donor, error)
	UpdateDonationStats(ctx context.Context, id uint64, donations uint32, last time.Time) error
}

// AppointmentStore creates and mutates the appointments that mirror
// fulfillment events.
type AppointmentStore interface {
	Create(ctx context.Context, a model.Appointment) (uint64, error)
	FindFulfilledForDonorSince(ctx context.Context, donorID uint64, since time.Time) (model.Appointment, error)
	CancelFulfilled(ctx context.Context, donorID uint64, userID *uint64, since time.Time) error
}

// UserDirectory resolves requester emails to user accounts so that
// synthetic appointments can be attributed.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// Recorder appends audit entries for administrative mutations.
type Recorder interface {
	Record(ctx context.Context, adminID uint64, adminEmail, action, targetModel, targetID string) error
}

// Manager validates and applies status transitions on blood requests
// and performs the cascading side effects.
type Manager struct {
	Requests     RequestStore
	Donors       DonorStore
	Appointments AppointmentStore
	Users        UserDirectory
	Sender       notify.Sender
	Audit        Recorder

	now func() time.Time // injectable clock for tests
}

// NewManager wires a Manager. Sender and Audit may be nil; the
// corresponding side effects are then skipped.
func NewManager(requests RequestStore, donors DonorStore, appointments AppointmentStore, users UserDirectory, sender notify.Sender, audit Recorder) *Manager {
	if requests == nil || donors == nil || appointments == nil || users == nil {
		panic("nil store passed to lifecycle.NewManager")
	}
	return &Manager{
		Requests:     requests,
		Donors:       donors,
		Appointments: appointments,
		Users:        users,
		Sender:       sender,
		Audit:        audit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest registers a new blood request. It always starts
// pending; no validation is applied beyond decoding.
func (m *Manager) CreateRequest(ctx context.Context, name, email, bloodGroup string, quantity uint32) (model.Request, error) {
	return m.Requests.Create(ctx, name, email, bloodGroup, quantity)
}

// DeleteRequest permanently removes a request. There is no cascading
// effect on donors or appointments.
func (m *Manager) DeleteRequest(ctx context.Context, id uint64) error {
	return m.Requests.Delete(ctx, id)
}

// SetStatus validates and applies a status transition, then runs the
// cascading side effects. The returned request reflects the persisted
// update. Side-effect failures are logged and swallowed; only the
// primary status update can fail the call.
func (m *Manager) SetStatus(ctx context.Context, actor Actor, requestID uint64, target string, fulfilledBy *uint64) (model.Request, error) {
	switch target {
	case model.RequestPending, model.RequestFulfilled, model.RequestCancelled:
	default:
		return model.Request{}, ErrInvalidStatus
	}

	prior, err := m.Requests.GetByID(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}

	// fulfilled_by is only written when entering fulfilled with a donor.
	var donorRef *uint64
	if target == model.RequestFulfilled && fulfilledBy != nil {
		donorRef = fulfilledBy
	}
	if err := m.Requests.UpdateStatus(ctx, requestID, target, donorRef); err != nil {
		return model.Request{}, err
	}

	updated, err := m.Requests.GetByID(ctx, requestID)
	if err != nil {
		// The update committed; reconstruct the result rather than fail.
		updated = prior
		updated.Status = target
		if donorRef != nil {
			updated.FulfilledBy = donorRef
		}
	}

	ts := m.now()

	if target == model.RequestFulfilled && fulfilledBy != nil {
		if err := m.creditDonor(ctx, *fulfilledBy, ts); err != nil {
			log.Printf("lifecycle: donor credit for request %d failed: %v", requestID, err)
		}
		if err := m.ensureFulfillmentAppointment(ctx, *fulfilledBy, prior.RequesterEmail, ts); err != nil {
			log.Printf("lifecycle: fulfillment appointment for request %d failed: %v", requestID, err)
		}
	}

	if target == model.RequestCancelled && prior.Status == model.RequestFulfilled && prior.FulfilledBy != nil {
		if err := m.cancelFulfillmentAppointment(ctx, *prior.FulfilledBy, prior.RequesterEmail, ts); err != nil {
			log.Printf("lifecycle: appointment cancellation for request %d failed: %v", requestID, err)
		}
		// The donor's donations counter is deliberately not decremented:
		// the donation itself already happened.
	}

	if updated.Status != prior.Status && m.Sender != nil {
		subject, body := notify.StatusMessage(updated.Status, updated.RequesterName, updated.BloodGroupNeeded, updated.Quantity)
		if ok := m.Sender.Send(ctx, updated.RequesterEmail, subject, body, updated.RequesterName); !ok {
			log.Printf("lifecycle: status notification for request %d not delivered", requestID)
		}
	}

	if m.Audit != nil {
		if err := m.Audit.Record(ctx, actor.ID, actor.Email, "UPDATE", "Request", fmt.Sprint(requestID)); err != nil {
			log.Printf("lifecycle: audit append for request %d failed: %v", requestID, err)
		}
	}

	return updated, nil
}

// creditDonor bumps the matched donor's statistics: lastDonationDate
// becomes the transition timestamp and donations increases by one.
// This is a read-modify-write without locking; a concurrent credit can
// lose an increment, which matches the accepted consistency model.
func (m *Manager) creditDonor(ctx context.Context, donorID uint64, ts time.Time) error {
	donor, err := m.Donors.GetByID(ctx, donorID)
	if err != nil {
		return err
	}
	return m.Donors.UpdateDonationStats(ctx, donorID, donor.Donations+1, ts)
}

// ensureFulfillmentAppointment creates today's fulfilled appointment
// for the donor unless one already exists. The lookup-then-create
// pattern is a best-effort dedup, not a hard guarantee: two concurrent
// fulfillments can both miss the lookup and double-create. The race is
// confined to this function so it can later be replaced by a unique
// constraint or a compare-and-swap insert.
func (m *Manager) ensureFulfillmentAppointment(ctx context.Context, donorID uint64, requesterEmail string, ts time.Time) error {
	dayStart := startOfDay(ts)
	if _, err := m.Appointments.FindFulfilledForDonorSince(ctx, donorID, dayStart); err == nil {
		return nil // already recorded today
	}

	var userID *uint64
	if requesterEmail != "" {
		if u, err := m.Users.GetByEmail(ctx, requesterEmail); err == nil {
			userID = &u.ID
		}
	}

	_, err := m.Appointments.Create(ctx, model.Appointment{
		UserID:  userID,
		DonorID: &donorID,
		Date:    ts,
		Status:  model.AppointmentFulfilled,
	})
	return err
}

// cancelFulfillmentAppointment flips today's fulfilled appointment for
// the donor and resolved requester account to cancelled.
func (m *Manager) cancelFulfillmentAppointment(ctx context.Context, donorID uint64, requesterEmail string, ts time.Time) error {
	var userID *uint64
	if requesterEmail != "" {
		if u, err := m.Users.GetByEmail(ctx, requesterEmail); err == nil {
			userID = &u.ID
		}
	}
	return m.Appointments.CancelFulfilled(ctx, donorID, userID, startOfDay(ts))
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
