// Package schedule implements the time-slot scheduling and presence
// verification core: interval arithmetic, free-slot computation, the
// booking admission rule with break precedence, and the geofence
// distance check.  Everything in this package is pure; persistence and
// locking live in the service layer.
package schedule

import "time"

// Interval is a half-open time window [Start, End).
type Interval struct {
    Start time.Time
    End   time.Time
}

// Duration returns End minus Start.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// IsValid reports whether the interval is non-empty, i.e. Start < End.
func (iv Interval) IsValid() bool { return iv.Start.Before(iv.End) }

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.  Touching endpoints do not overlap: an
// interval ending at 10:00 does not conflict with one starting at 10:00.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Contains reports whether [innerStart, innerEnd) lies fully inside
// [outerStart, outerEnd).  Equal endpoints count as contained.
func Contains(outerStart, outerEnd, innerStart, innerEnd time.Time) bool {
    return !innerStart.Before(outerStart) && !outerEnd.Before(innerEnd)
}

// Overlaps reports whether iv intersects other.
func (iv Interval) Overlaps(other Interval) bool {
    return Overlaps(iv.Start, iv.End, other.Start, other.End)
}

// Contains reports whether other lies fully inside iv.
func (iv Interval) Contains(other Interval) bool {
    return Contains(iv.Start, iv.End, other.Start, other.End)
}

// Clamp trims iv to the window [winStart, winEnd).  The second return
// value is false when nothing of iv survives the clamp.
func Clamp(iv Interval, winStart, winEnd time.Time) (Interval, bool) {
    out := iv
    if out.Start.Before(winStart) {
        out.Start = winStart
    }
    if out.End.After(winEnd) {
        out.End = winEnd
    }
    if !out.IsValid() {
        return Interval{}, false
    }
    return out, true
}

func maxTime(a, b time.Time) time.Time {
    if a.After(b) {
        return a
    }
    return b
}
