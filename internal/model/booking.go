package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  A booking
// is created as pending and becomes confirmed once attendance has been
// verified inside the geofence.  Completed is derived lazily when the
// end instant has passed; it is never swept eagerly.
type BookingStatus string

const (
    BookingPending   BookingStatus = "pending"
    BookingConfirmed BookingStatus = "confirmed"
    BookingCancelled BookingStatus = "cancelled"
    BookingCompleted BookingStatus = "completed"
)

// CancelReasonNoShow is recorded when the attendance deadline fires
// without a confirmed presence check.
const CancelReasonNoShow = "did not reach seat within 20 minutes of booking start time"

// Break is a sub-window carved out of a booking during which the seat
// is released for others.  Every break lies within its booking's
// [StartsAt, EndsAt) window and breaks of one booking never overlap.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – owning booking.
//  StartsAt  – break start instant.
//  EndsAt    – break end instant.
//  CreatedAt – creation timestamp.
type Break struct {
    ID        uint64    // booking_breaks.id
    BookingID uint64    // booking_breaks.booking_id
    StartsAt  time.Time // booking_breaks.starts_at
    EndsAt    time.Time // booking_breaks.ends_at
    CreatedAt time.Time // booking_breaks.created_at
}

// Booking records a member's reservation of one seat for a time window.
// The top-level status is descriptive summary state; the fine-grained
// break windows live in the Breaks list, and the seat's own entry list
// is what the conflict resolver reads.
//
// Fields:
//  ID                    – primary key identifier.
//  Reference             – opaque UUID exposed to clients and events.
//  UserID                – member who owns the booking.
//  UserName              – display name snapshot.
//  UserEmail             – email snapshot.
//  SeatID                – booked seat.
//  SeatLocation          – seat location, denormalized for responses.
//  SeatNumber            – seat number, denormalized for responses.
//  StartsAt              – start instant of the half-open window.
//  EndsAt                – end instant of the window.
//  Status                – pending, confirmed, cancelled or completed.
//  AttendanceConfirmed   – whether presence was verified.
//  AttendanceConfirmedAt – when presence was verified (nullable).
//  CancellationReason    – why the booking was cancelled (nullable).
//  DeadlineTaskID        – id of the pending auto-cancel task (empty
//                          once confirmed or cancelled).
//  Breaks                – ordered break sub-records.
//  CreatedAt             – creation timestamp.
//  UpdatedAt             – last update timestamp.
type Booking struct {
    ID                    uint64        // bookings.id
    Reference             string        // bookings.reference
    UserID                uint64        // bookings.user_id
    UserName              string        // bookings.user_name
    UserEmail             string        // bookings.user_email
    SeatID                uint64        // bookings.seat_id
    SeatLocation          string        // seats.location (joined)
    SeatNumber            uint32        // seats.seat_number (joined)
    StartsAt              time.Time     // bookings.starts_at
    EndsAt                time.Time     // bookings.ends_at
    Status                BookingStatus // bookings.status
    AttendanceConfirmed   bool          // bookings.attendance_confirmed
    AttendanceConfirmedAt *time.Time    // bookings.attendance_confirmed_at (nullable)
    CancellationReason    *string       // bookings.cancellation_reason (nullable)
    DeadlineTaskID        string        // bookings.deadline_task_id
    Breaks                []Break       // booking_breaks rows
    CreatedAt             time.Time     // bookings.created_at
    UpdatedAt             time.Time     // bookings.updated_at
}

// EffectiveStatus derives the status to report at the given instant.
// Pending and confirmed bookings whose window has fully passed are
// reported as completed.
func (b *Booking) EffectiveStatus(now time.Time) BookingStatus {
    if (b.Status == BookingPending || b.Status == BookingConfirmed) && !b.EndsAt.After(now) {
        return BookingCompleted
    }
    return b.Status
}

// OnBreakAt reports whether one of the booking's breaks covers the
// given instant.  The booking keeps its top-level status while on a
// break; this flag is informational.
func (b *Booking) OnBreakAt(now time.Time) bool {
    for _, br := range b.Breaks {
        if !now.Before(br.StartsAt) && now.Before(br.EndsAt) {
            return true
        }
    }
    return false
}

// Deadline returns the instant by which attendance must be confirmed.
func (b *Booking) Deadline(grace time.Duration) time.Time {
    return b.StartsAt.Add(grace)
}
