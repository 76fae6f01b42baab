package model

import "time"

// Donor is a registrable blood-donation source.  Donors are distinct
// from user accounts: not every donor corresponds to a user, and the
// registry can be maintained by administrators independently of who
// has signed up.  This struct corresponds to a row in the `donors`
// table.
//
// The Donations counter only increases.  It is driven exclusively by
// the request lifecycle's fulfillment transition and is never
// decremented, even when a fulfilled request is later cancelled (a
// past donation still happened).
//
// Fields:
//  ID               primary key identifier.
//  Name             donor's full name.
//  Email            contact email address.
//  Phone            contact phone number.
//  BloodGroup       blood group label (e.g. "O+", "AB-").
//  Address          free-text postal address.
//  Donations        cumulative count of credited donations, starts at 0.
//  LastDonationDate when the donor last donated (nil if never).
//  CreatedAt        creation timestamp.
//  UpdatedAt        last update timestamp.
type Donor struct {
	ID               uint64     // donors.id
	Name             string     // donors.name
	Email            string     // donors.email
	Phone            string     // donors.phone
	BloodGroup       string     // donors.blood_group
	Address          string     // donors.address
	Donations        uint32     // donors.donations
	LastDonationDate *time.Time // donors.last_donation_date (nullable)
	CreatedAt        time.Time  // donors.created_at
	UpdatedAt        time.Time  // donors.updated_at
}
