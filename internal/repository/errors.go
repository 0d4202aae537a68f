// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as the booking service and handlers to distinguish between
// failure scenarios without string matching: ErrForbidden marks an
// operation on someone else's resource, ErrSeatNotFound and
// ErrBookingNotFound mark unresolved identities, and ErrNoLocation
// marks a member who has never reported a position.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrBookingNotFound is returned when a booking lookup yields no rows.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNoLocation is returned when a member has no recorded location.
// Callers must report this distinctly from "too far away".
var ErrNoLocation = errors.New("no recorded location")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrSeatExists is returned when creating a seat whose
// (location, seat number) pair is already taken.
var ErrSeatExists = errors.New("seat already exists")
