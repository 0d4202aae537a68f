package schedule

import (
    "fmt"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// AdmissionCode identifies the outcome of an admission check.
type AdmissionCode int

const (
    AdmissionOK AdmissionCode = iota
    RejectInvalidWindow             // start is not before end
    RejectStartInPast               // start already passed
    RejectTooShort                  // shorter than MinBookingDuration
    RejectSeatBooked                // overlaps an active entry
    RejectOutsideBreak              // not contained in a single break window
    RejectBreakTaken                // break window already booked by someone else
)

// Admission is the decision for one candidate booking.  Conflict holds
// the competing or bounding window when one is derivable, so that the
// caller can report the exact sub-range that is (or is not) bookable.
type Admission struct {
    Code     AdmissionCode
    Message  string
    Conflict *Interval
}

// Admitted reports whether the candidate may be booked.
func (a Admission) Admitted() bool { return a.Code == AdmissionOK }

// CheckAdmission validates a candidate booking window against a seat's
// entry list.  Preconditions are checked first; then the break
// precedence rule applies: when the candidate overlaps no on-break
// entry it is admitted unless an active entry blocks it, and when it
// does overlap a break it must fit entirely inside that single break
// window and must not collide with any active entry other than the
// break's own covering booking.
func CheckAdmission(entries []model.SeatEntry, cand Interval, now time.Time) Admission {
    if !cand.IsValid() {
        return Admission{Code: RejectInvalidWindow, Message: "start time must be before end time"}
    }
    if cand.Start.Before(now) {
        return Admission{Code: RejectStartInPast, Message: "start time is in the past"}
    }
    if cand.Duration() < MinBookingDuration {
        return Admission{
            Code:    RejectTooShort,
            Message: fmt.Sprintf("booking must be at least %d minutes", int(MinBookingDuration/time.Minute)),
        }
    }

    breaks := overlappingBreaks(entries, cand, now)

    if len(breaks) == 0 {
        for _, e := range entries {
            if e.Status != model.EntryActive || !e.EndsAt.After(now) {
                continue
            }
            if Overlaps(cand.Start, cand.End, e.StartsAt, e.EndsAt) {
                w := Interval{Start: e.StartsAt, End: e.EndsAt}
                return Admission{
                    Code:     RejectSeatBooked,
                    Message:  fmt.Sprintf("seat is already booked from %s to %s", fmtInstant(e.StartsAt), fmtInstant(e.EndsAt)),
                    Conflict: &w,
                }
            }
        }
        return Admission{Code: AdmissionOK}
    }

    // The candidate touches at least one break.  It must fit inside a
    // single break's window; partial coverage by a union of breaks is
    // not bookable.
    var covering *model.SeatEntry
    for i := range breaks {
        if Contains(breaks[i].StartsAt, breaks[i].EndsAt, cand.Start, cand.End) {
            covering = &breaks[i]
            break
        }
    }
    if covering == nil {
        b := breaks[0]
        w := Interval{Start: b.StartsAt, End: b.EndsAt}
        return Admission{
            Code:     RejectOutsideBreak,
            Message:  fmt.Sprintf("seat is only free during a break from %s to %s", fmtInstant(b.StartsAt), fmtInstant(b.EndsAt)),
            Conflict: &w,
        }
    }

    // The break owner's original active entry donated this window and is
    // exempt from the conflict check.  Anything else active in the way
    // means the break window has already been taken.
    for _, e := range entries {
        if e.Status != model.EntryActive || !e.EndsAt.After(now) {
            continue
        }
        if e.BookingID == covering.BookingID {
            continue
        }
        if Overlaps(cand.Start, cand.End, e.StartsAt, e.EndsAt) {
            w := Interval{Start: e.StartsAt, End: e.EndsAt}
            return Admission{
                Code:     RejectBreakTaken,
                Message:  fmt.Sprintf("break window is already booked from %s to %s", fmtInstant(e.StartsAt), fmtInstant(e.EndsAt)),
                Conflict: &w,
            }
        }
    }
    return Admission{Code: AdmissionOK}
}

// BreakCode identifies the outcome of a break validation.
type BreakCode int

const (
    BreakOK BreakCode = iota
    BreakRejectInvalidWindow
    BreakRejectEnded          // break would end in the past
    BreakRejectTooShort
    BreakRejectOutsideBooking // not contained in the booking window
    BreakRejectSiblingOverlap // overlaps a break of the same booking
    BreakRejectSeatOverlap    // overlaps an on-break entry of another booking
)

// BreakCheck is the decision for one candidate break window.
type BreakCheck struct {
    Code     BreakCode
    Message  string
    Conflict *Interval
}

// OK reports whether the break may be recorded.
func (b BreakCheck) OK() bool { return b.Code == BreakOK }

// CheckBreak validates a break carved out of an existing booking.  The
// break must lie inside the booking window, end in the future, respect
// the minimum duration and overlap neither a sibling break of the same
// booking nor an on-break entry donated by any other booking on the
// seat (on-break entries are nested in exactly one active entry, so
// two of them never overlap).
func CheckBreak(b *model.Booking, seatEntries []model.SeatEntry, br Interval, now time.Time) BreakCheck {
    if !br.IsValid() {
        return BreakCheck{Code: BreakRejectInvalidWindow, Message: "break start must be before break end"}
    }
    if br.End.Before(now) {
        return BreakCheck{Code: BreakRejectEnded, Message: "break has already ended"}
    }
    if br.Duration() < MinBookingDuration {
        return BreakCheck{
            Code:    BreakRejectTooShort,
            Message: fmt.Sprintf("break must be at least %d minutes", int(MinBookingDuration/time.Minute)),
        }
    }
    if !Contains(b.StartsAt, b.EndsAt, br.Start, br.End) {
        w := Interval{Start: b.StartsAt, End: b.EndsAt}
        return BreakCheck{
            Code:     BreakRejectOutsideBooking,
            Message:  fmt.Sprintf("break must lie within the booking window %s to %s", fmtInstant(b.StartsAt), fmtInstant(b.EndsAt)),
            Conflict: &w,
        }
    }
    for _, sib := range b.Breaks {
        if Overlaps(br.Start, br.End, sib.StartsAt, sib.EndsAt) {
            w := Interval{Start: sib.StartsAt, End: sib.EndsAt}
            return BreakCheck{
                Code:     BreakRejectSiblingOverlap,
                Message:  fmt.Sprintf("break overlaps an existing break from %s to %s", fmtInstant(sib.StartsAt), fmtInstant(sib.EndsAt)),
                Conflict: &w,
            }
        }
    }
    for _, e := range seatEntries {
        if e.Status != model.EntryOnBreak || e.BookingID == b.ID || !e.EndsAt.After(now) {
            continue
        }
        if Overlaps(br.Start, br.End, e.StartsAt, e.EndsAt) {
            w := Interval{Start: e.StartsAt, End: e.EndsAt}
            return BreakCheck{
                Code:     BreakRejectSeatOverlap,
                Message:  fmt.Sprintf("another booking already has a break from %s to %s", fmtInstant(e.StartsAt), fmtInstant(e.EndsAt)),
                Conflict: &w,
            }
        }
    }
    return BreakCheck{Code: BreakOK}
}

// overlappingBreaks returns the on-break entries whose window
// intersects the candidate and has not yet expired.
func overlappingBreaks(entries []model.SeatEntry, cand Interval, now time.Time) []model.SeatEntry {
    out := make([]model.SeatEntry, 0, 2)
    for _, e := range entries {
        if e.Status != model.EntryOnBreak || !e.EndsAt.After(now) {
            continue
        }
        if Overlaps(cand.Start, cand.End, e.StartsAt, e.EndsAt) {
            out = append(out, e)
        }
    }
    return out
}

func fmtInstant(t time.Time) string {
    return t.UTC().Format(time.RFC3339)
}
