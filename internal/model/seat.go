package model

import (
    "strconv"
    "time"
)

// EntryStatus enumerates the states of a seat-level booking entry.  An
// "active" entry blocks the seat for its whole window.  An "on-break"
// entry temporarily releases part of an active entry's window so that
// other members may book into it.
type EntryStatus string

const (
    EntryActive  EntryStatus = "active"   // currently held reservation window
    EntryOnBreak EntryStatus = "on-break" // donated sub-window of an active entry
)

// SeatEntry is one record in a seat's booking list.  Entries are not
// independently addressable from the outside; within a seat they are
// identified by the tuple (user, start, end, status).  The BookingID
// links an entry back to the booking that produced it so that entries
// can be released when the booking is cancelled.
//
// Fields:
//  ID        – primary key identifier (seat_entries.id).
//  SeatID    – seat this entry belongs to.
//  BookingID – booking that produced this entry.
//  UserID    – owner of the entry.
//  UserName  – display name snapshot taken at booking time.
//  UserEmail – email snapshot taken at booking time.
//  StartsAt  – start instant of the half-open window [StartsAt, EndsAt).
//  EndsAt    – end instant of the window.
//  Status    – active or on-break.
//  BookedAt  – when the entry was recorded.
type SeatEntry struct {
    ID        uint64      // seat_entries.id
    SeatID    uint64      // seat_entries.seat_id
    BookingID uint64      // seat_entries.booking_id
    UserID    uint64      // seat_entries.user_id
    UserName  string      // seat_entries.user_name
    UserEmail string      // seat_entries.user_email
    StartsAt  time.Time   // seat_entries.starts_at
    EndsAt    time.Time   // seat_entries.ends_at
    Status    EntryStatus // seat_entries.status
    BookedAt  time.Time   // seat_entries.booked_at
}

// Seat describes a physical seat in one of the library locations.
// Seats are uniquely identified by (Location, SeatNumber).  The entry
// list is the authoritative source that the availability and conflict
// computations read; it is kept in sync with the bookings table inside
// a single transaction.
//
// Fields:
//  ID         – primary key identifier.
//  Location   – room the seat lives in (e.g. "Main Library").
//  SeatNumber – number of the seat within the location.
//  Entries    – current booking entries, ordered by start instant.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
    ID         uint64      // seats.id
    Location   string      // seats.location
    SeatNumber uint32      // seats.seat_number
    Entries    []SeatEntry // seat_entries rows for this seat
    CreatedAt  time.Time   // seats.created_at
    UpdatedAt  time.Time   // seats.updated_at
}

// Key returns the canonical "location:number" identity of the seat,
// used for per-seat serialization of booking requests.
func (s *Seat) Key() string {
    return SeatKey(s.Location, s.SeatNumber)
}

// SeatKey builds the canonical seat identity string without a Seat value.
func SeatKey(location string, number uint32) string {
    return location + ":" + strconv.FormatUint(uint64(number), 10)
}
