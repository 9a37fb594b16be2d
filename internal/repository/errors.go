// Package repository defines the storage contracts used by the services
// and their SQL implementations. The sentinel errors below are shared by
// every implementation, including the in-memory one, so higher layers
// can tell failure scenarios apart with errors.Is.
package repository

import "errors"

// ErrNotFound is returned when a row with the requested id does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when signing up with an email already in use.
var ErrEmailExists = errors.New("email already exists")

// ErrSpotTaken is returned by ReservationTx.Create when (booked_at, spot)
// is already reserved.
var ErrSpotTaken = errors.New("spot already reserved for that day")

// ErrWeekTaken is returned by ReservationTx.Create when the owner already
// holds a reservation in the same ISO week.
var ErrWeekTaken = errors.New("owner already has a reservation that week")

// ErrConflict is returned when a transaction lost a race with a concurrent
// one and was rolled back. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")
