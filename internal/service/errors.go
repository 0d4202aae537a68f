package service

import "fmt"

// The service layer reports failures through a small set of typed
// errors so that the HTTP layer can map each category to a status code
// without inspecting message text.

// ValidationError reports malformed or out-of-policy input, such as a
// reversed time window or a booking shorter than the minimum duration.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError reports a scheduling clash: the requested window
// overlaps an existing entry, a break is already claimed, or the
// member already holds an active booking.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

// AuthorizationError reports an operation attempted by someone other
// than the booking's owner.
type AuthorizationError struct{ Msg string }

func (e *AuthorizationError) Error() string { return e.Msg }

// NotFoundError reports a missing seat or booking.
type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

// PresenceError reports a failed attendance check.  Distance is the
// measured separation in meters when a location was available;
// NoLocation is set when the member never reported a position.
type PresenceError struct {
    Msg        string
    Distance   float64
    NoLocation bool
}

func (e *PresenceError) Error() string { return e.Msg }

// ConsistencyError reports drift between the booking ledger and the
// seat schedule, such as a cancellation that released an unexpected
// number of seat entries.
type ConsistencyError struct{ Msg string }

func (e *ConsistencyError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
    return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) error {
    return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}
