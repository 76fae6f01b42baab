package model

import "time"

// Request statuses.  A request starts pending and is moved to
// fulfilled or cancelled by an administrator.  Both are terminal in
// practice, though re-entry is permitted by the lifecycle manager.
const (
	RequestPending   = "pending"
	RequestFulfilled = "fulfilled"
	RequestCancelled = "cancelled"
)

// Request is a solicitation for a quantity of a specific blood group
// (not an HTTP request).  FulfilledBy references the donor credited
// with satisfying the request and is set if and only if the request
// is, or was, fulfilled.  This struct corresponds to a row in the
// `requests` table.
//
// Fields:
//  ID               primary key identifier.
//  RequesterName    name of the person requesting blood.
//  RequesterEmail   contact email of the requester; also used to
//                   attribute the synthetic fulfillment appointment
//                   to a matching user account.
//  BloodGroupNeeded required blood group label.
//  Quantity         number of units requested.
//  Status           one of pending, fulfilled, cancelled.
//  FulfilledBy      donor credited with fulfillment (nil until then).
//  CreatedAt        creation timestamp.
//  UpdatedAt        last update timestamp.
type Request struct {
	ID               uint64    // requests.id
	RequesterName    string    // requests.requester_name
	RequesterEmail   string    // requests.requester_email
	BloodGroupNeeded string    // requests.blood_group_needed
	Quantity         uint32    // requests.quantity
	Status           string    // requests.status
	FulfilledBy      *uint64   // requests.fulfilled_by (nullable)
	CreatedAt        time.Time // requests.created_at
	UpdatedAt        time.Time // requests.updated_at
}
