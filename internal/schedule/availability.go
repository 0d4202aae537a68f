package schedule

import (
    "sort"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// MinBookingDuration is the minimum bookable window.  Gaps shorter than
// this are not reported as free slots and candidate bookings below it
// are rejected.
const MinBookingDuration = 30 * time.Minute

// Slot is a maximal free sub-interval of a seat's schedule.  A zero End
// marks an unbounded slot reaching into the open future.
type Slot struct {
    Start time.Time
    End   time.Time
}

// Unbounded reports whether the slot has no end.
func (s Slot) Unbounded() bool { return s.End.IsZero() }

// DurationMinutes returns the slot length in whole minutes, or 0 for an
// unbounded slot.
func (s Slot) DurationMinutes() int {
    if s.Unbounded() {
        return 0
    }
    return int(s.End.Sub(s.Start) / time.Minute)
}

// SeatAvailability summarizes a seat over a query window.
type SeatAvailability string

const (
    SeatAvailable SeatAvailability = "available" // nothing blocks the window
    SeatLimited   SeatAvailability = "limited"   // partially blocked, slots remain
    SeatBooked    SeatAvailability = "booked"    // no slot of at least 30 minutes
)

// FreeSlots computes the ordered, non-overlapping free sub-intervals of
// the query window [queryStart, queryEnd).  A zero queryEnd means the
// window is unbounded.  Only entries that are active and not yet
// expired at evaluation time block availability; on-break entries are
// excluded here and handled by the conflict resolver.
//
// The sweep starts at max(queryStart, now): gaps in the past are never
// bookable.  Gaps shorter than MinBookingDuration are dropped, except
// when the seat has no blocking entries at all, in which case a single
// slot spanning the whole window is returned regardless of its length.
func FreeSlots(entries []model.SeatEntry, queryStart, queryEnd, now time.Time) []Slot {
    bounded := !queryEnd.IsZero()
    cursor := maxTime(queryStart, now)

    blocking := blockingEntries(entries, now)
    if len(blocking) == 0 {
        if bounded && !cursor.Before(queryEnd) {
            return nil
        }
        return []Slot{{Start: cursor, End: queryEnd}}
    }

    sort.Slice(blocking, func(i, j int) bool {
        return blocking[i].StartsAt.Before(blocking[j].StartsAt)
    })

    slots := make([]Slot, 0, len(blocking)+1)
    for _, e := range blocking {
        gapEnd := e.StartsAt
        if bounded && gapEnd.After(queryEnd) {
            gapEnd = queryEnd
        }
        if cursor.Before(gapEnd) && gapEnd.Sub(cursor) >= MinBookingDuration {
            slots = append(slots, Slot{Start: cursor, End: gapEnd})
        }
        cursor = maxTime(cursor, e.EndsAt)
        if bounded && !cursor.Before(queryEnd) {
            return slots
        }
    }

    if !bounded {
        slots = append(slots, Slot{Start: cursor})
    } else if cursor.Before(queryEnd) && queryEnd.Sub(cursor) >= MinBookingDuration {
        slots = append(slots, Slot{Start: cursor, End: queryEnd})
    }
    return slots
}

// Availability classifies the seat over the query window given the
// slots FreeSlots produced for it.
func Availability(entries []model.SeatEntry, slots []Slot, queryStart, queryEnd, now time.Time) SeatAvailability {
    windowStart := maxTime(queryStart, now)
    // A bounded window entirely in the past has nothing bookable in it;
    // without this check the overlap scan below finds no blockers and
    // would report the seat as available.
    if !queryEnd.IsZero() && !windowStart.Before(queryEnd) {
        return SeatBooked
    }
    blocked := false
    for _, e := range blockingEntries(entries, now) {
        if queryEnd.IsZero() {
            if e.EndsAt.After(windowStart) {
                blocked = true
                break
            }
        } else if Overlaps(windowStart, queryEnd, e.StartsAt, e.EndsAt) {
            blocked = true
            break
        }
    }
    switch {
    case !blocked:
        return SeatAvailable
    case len(slots) > 0:
        return SeatLimited
    default:
        return SeatBooked
    }
}

// blockingEntries filters to active entries whose end is still in the
// future at evaluation time.
func blockingEntries(entries []model.SeatEntry, now time.Time) []model.SeatEntry {
    out := make([]model.SeatEntry, 0, len(entries))
    for _, e := range entries {
        if e.Status == model.EntryActive && e.EndsAt.After(now) {
            out = append(out, e)
        }
    }
    return out
}
