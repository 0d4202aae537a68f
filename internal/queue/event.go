// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published on the booking.events queue.
const (
    EventBookingCreated   = "booking.created"
    EventBreakAdded       = "booking.break_added"
    EventBookingCancelled = "booking.cancelled"
    EventBookingConfirmed = "booking.confirmed"
)

// BookingEvent is published whenever a booking changes state.  It
// carries enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingEvent struct {
    Kind         string `json:"kind"`
    Reference    string `json:"reference"`
    BookingID    uint64 `json:"booking_id"`
    UserID       uint64 `json:"user_id"`
    UserEmail    string `json:"user_email"`
    SeatLocation string `json:"seat_location"`
    SeatNumber   uint32 `json:"seat_number"`
    StartsAt     string `json:"starts_at"`
    EndsAt       string `json:"ends_at"`
    Reason       string `json:"reason,omitempty"`
    OccurredAt   string `json:"occurred_at"`
}
