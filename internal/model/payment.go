package model

import "time"

// Payment records one successful external payment confirmation.
// Recording is idempotent per user, amount and calendar day: the
// confirmation endpoint checks for an existing row before inserting.
//
// Fields:
//  ID        primary key identifier.
//  PaymentID externally visible payment reference.
//  UserID    account the payment belongs to.
//  Amount    amount paid, in the gateway's currency units.
//  CreatedAt when the payment was recorded.
type Payment struct {
	ID        uint64    // payments.id
	PaymentID string    // payments.payment_id
	UserID    uint64    // payments.user_id
	Amount    float64   // payments.amount
	CreatedAt time.Time // payments.created_at
}
