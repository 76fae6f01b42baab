// Package repository defines error values that are shared across
// repositories. These sentinels let higher layers such as handlers and
// the lifecycle manager distinguish failure scenarios without string
// matching. For example, ErrRequestNotFound maps to an HTTP 404 while
// a raw driver error maps to a 500.
package repository

import "errors"

// ErrRequestNotFound is returned when a blood request id does not
// resolve to a row.
var ErrRequestNotFound = errors.New("request not found")

// ErrDonorNotFound is returned when a donor id does not resolve to a
// row. The lifecycle manager treats this as a tolerable condition
// during cascading updates.
var ErrDonorNotFound = errors.New("donor not found")

// ErrAppointmentNotFound is returned when an appointment lookup
// matches nothing.
var ErrAppointmentNotFound = errors.New("appointment not found")

// ErrRefreshTokenInvalid is returned when a refresh token hash does
// not resolve to a live session: the token is unknown, revoked or
// past its expiry. The three cases are deliberately indistinguishable
// to the caller.
var ErrRefreshTokenInvalid = errors.New("refresh token invalid")
