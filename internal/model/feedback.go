package model

import "time"

// Feedback is a free-text comment with a numeric rating submitted by
// an authenticated user.
//
// Fields:
//  ID        primary key identifier.
//  UserID    account that submitted the feedback.
//  Message   free-text feedback body.
//  Rating    numeric rating, typically 1 to 5.
//  CreatedAt submission timestamp.
type Feedback struct {
	ID        uint64    // feedback.id
	UserID    uint64    // feedback.user_id
	Message   string    // feedback.message
	Rating    uint8     // feedback.rating
	CreatedAt time.Time // feedback.created_at
}
