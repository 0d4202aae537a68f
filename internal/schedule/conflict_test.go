package schedule

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

func TestCheckAdmissionPreconditions(t *testing.T) {
    now := at(8, 0)

    res := CheckAdmission(nil, Interval{at(11, 0), at(10, 0)}, now)
    assert.Equal(t, RejectInvalidWindow, res.Code)

    res = CheckAdmission(nil, Interval{at(7, 0), at(10, 0)}, now)
    assert.Equal(t, RejectStartInPast, res.Code)

    // 20 minutes is below the minimum regardless of availability.
    res = CheckAdmission(nil, Interval{at(10, 0), at(10, 20)}, now)
    assert.Equal(t, RejectTooShort, res.Code)
}

func TestCheckAdmissionEmptySeat(t *testing.T) {
    now := at(8, 0)

    res := CheckAdmission(nil, Interval{at(10, 0), at(11, 0)}, now)
    assert.True(t, res.Admitted())
}

func TestCheckAdmissionOverlapRejected(t *testing.T) {
    now := at(8, 0)
    entries := []model.SeatEntry{activeEntry(1, at(10, 0), at(11, 0))}

    res := CheckAdmission(entries, Interval{at(10, 30), at(11, 15)}, now)
    assert.Equal(t, RejectSeatBooked, res.Code)
    require.NotNil(t, res.Conflict)
    assert.Equal(t, at(10, 0), res.Conflict.Start)
    assert.Equal(t, at(11, 0), res.Conflict.End)

    // Touching windows do not conflict.
    res = CheckAdmission(entries, Interval{at(11, 0), at(12, 0)}, now)
    assert.True(t, res.Admitted())
}

func TestCheckAdmissionInsideBreak(t *testing.T) {
    now := at(8, 0)
    // Booking 1 holds 09:00-12:00 and donated a break 10:00-10:40.
    entries := []model.SeatEntry{
        activeEntry(1, at(9, 0), at(12, 0)),
        breakEntry(1, at(10, 0), at(10, 40)),
    }

    // Fully inside the break: the covering booking is exempt from the
    // conflict check.
    res := CheckAdmission(entries, Interval{at(10, 5), at(10, 35)}, now)
    assert.True(t, res.Admitted())

    // Extends past the break end.
    res = CheckAdmission(entries, Interval{at(10, 5), at(10, 45)}, now)
    assert.Equal(t, RejectOutsideBreak, res.Code)
    require.NotNil(t, res.Conflict)
    assert.Equal(t, at(10, 0), res.Conflict.Start)
    assert.Equal(t, at(10, 40), res.Conflict.End)
}

func TestCheckAdmissionBreakAlreadyTaken(t *testing.T) {
    now := at(8, 0)
    // Booking 1 donated 10:00-11:00; booking 2 already booked into part
    // of it.
    entries := []model.SeatEntry{
        activeEntry(1, at(9, 0), at(12, 0)),
        breakEntry(1, at(10, 0), at(11, 0)),
        activeEntry(2, at(10, 0), at(10, 30)),
    }

    res := CheckAdmission(entries, Interval{at(10, 0), at(10, 30)}, now)
    assert.Equal(t, RejectBreakTaken, res.Code)

    // The remainder of the break is still bookable.
    res = CheckAdmission(entries, Interval{at(10, 30), at(11, 0)}, now)
    assert.True(t, res.Admitted())
}

func TestCheckAdmissionIgnoresExpiredBreak(t *testing.T) {
    now := at(11, 30)
    entries := []model.SeatEntry{
        activeEntry(1, at(9, 0), at(12, 0)),
        breakEntry(1, at(10, 0), at(11, 0)), // break is over
    }

    res := CheckAdmission(entries, Interval{at(11, 30), at(12, 0)}, now)
    assert.Equal(t, RejectSeatBooked, res.Code, "an expired break no longer opens the seat")
}

func TestCheckBreak(t *testing.T) {
    now := at(9, 30)
    booking := &model.Booking{
        ID:       1,
        StartsAt: at(9, 0),
        EndsAt:   at(12, 0),
        Breaks:   []model.Break{{BookingID: 1, StartsAt: at(9, 15), EndsAt: at(9, 50)}},
    }
    seatEntries := []model.SeatEntry{
        activeEntry(1, at(9, 0), at(12, 0)),
        breakEntry(1, at(9, 15), at(9, 50)),
    }

    res := CheckBreak(booking, seatEntries, Interval{at(10, 0), at(10, 40)}, now)
    assert.True(t, res.OK())

    res = CheckBreak(booking, seatEntries, Interval{at(11, 45), at(12, 30)}, now)
    assert.Equal(t, BreakRejectOutsideBooking, res.Code)

    res = CheckBreak(booking, seatEntries, Interval{at(10, 0), at(10, 20)}, now)
    assert.Equal(t, BreakRejectTooShort, res.Code)

    res = CheckBreak(booking, seatEntries, Interval{at(9, 40), at(10, 30)}, now)
    assert.Equal(t, BreakRejectSiblingOverlap, res.Code)
}

func TestCheckBreakRejectsOverlapWithOtherBookingsBreak(t *testing.T) {
    now := at(8, 0)
    booking := &model.Booking{ID: 2, StartsAt: at(9, 0), EndsAt: at(12, 0)}
    seatEntries := []model.SeatEntry{
        activeEntry(2, at(9, 0), at(12, 0)),
        breakEntry(7, at(10, 0), at(10, 45)), // another booking's break on the same seat
    }

    res := CheckBreak(booking, seatEntries, Interval{at(10, 15), at(11, 0)}, now)
    assert.Equal(t, BreakRejectSeatOverlap, res.Code)
}

func TestCheckBreakEndedWindow(t *testing.T) {
    now := at(11, 0)
    booking := &model.Booking{ID: 1, StartsAt: at(9, 0), EndsAt: at(12, 0)}

    res := CheckBreak(booking, nil, Interval{at(9, 30), at(10, 30)}, now)
    assert.Equal(t, BreakRejectEnded, res.Code)
}

func TestBreakContainmentInvariant(t *testing.T) {
    // After a successful check, the break window must lie inside the
    // booking window and avoid all siblings.
    now := at(8, 0)
    booking := &model.Booking{
        ID:       1,
        StartsAt: at(9, 0),
        EndsAt:   at(17, 0),
        Breaks: []model.Break{
            {BookingID: 1, StartsAt: at(10, 0), EndsAt: at(10, 30)},
            {BookingID: 1, StartsAt: at(14, 0), EndsAt: at(15, 0)},
        },
    }

    cand := Interval{at(11, 0), at(12, 0)}
    res := CheckBreak(booking, nil, cand, now)
    require.True(t, res.OK())
    assert.True(t, Contains(booking.StartsAt, booking.EndsAt, cand.Start, cand.End))
    for _, sib := range booking.Breaks {
        assert.False(t, Overlaps(cand.Start, cand.End, sib.StartsAt, sib.EndsAt))
    }
}

func TestCheckAdmissionMinDurationBoundary(t *testing.T) {
    now := at(8, 0)

    res := CheckAdmission(nil, Interval{at(10, 0), at(10, 0).Add(MinBookingDuration)}, now)
    assert.True(t, res.Admitted(), "exactly 30 minutes is bookable")

    res = CheckAdmission(nil, Interval{at(10, 0), at(10, 0).Add(MinBookingDuration - time.Minute)}, now)
    assert.Equal(t, RejectTooShort, res.Code)
}
