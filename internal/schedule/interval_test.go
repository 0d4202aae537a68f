package schedule

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
    return time.Date(2026, time.September, 1, hour, min, 0, 0, time.UTC)
}

func TestOverlapsSymmetry(t *testing.T) {
    cases := []struct {
        name           string
        a, b           Interval
        expectsOverlap bool
    }{
        {"disjoint", Interval{at(9, 0), at(10, 0)}, Interval{at(11, 0), at(12, 0)}, false},
        {"touching endpoints", Interval{at(9, 0), at(10, 0)}, Interval{at(10, 0), at(11, 0)}, false},
        {"partial overlap", Interval{at(9, 0), at(10, 30)}, Interval{at(10, 0), at(11, 0)}, true},
        {"nested", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, true},
        {"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            ab := Overlaps(tc.a.Start, tc.a.End, tc.b.Start, tc.b.End)
            ba := Overlaps(tc.b.Start, tc.b.End, tc.a.Start, tc.a.End)
            assert.Equal(t, tc.expectsOverlap, ab)
            assert.Equal(t, ab, ba, "overlaps must be symmetric")
        })
    }
}

func TestOverlapsSelf(t *testing.T) {
    iv := Interval{at(9, 0), at(9, 1)}
    assert.True(t, iv.Overlaps(iv), "any non-empty interval overlaps itself")
}

func TestContains(t *testing.T) {
    outer := Interval{at(9, 0), at(12, 0)}

    assert.True(t, outer.Contains(Interval{at(10, 0), at(11, 0)}))
    assert.True(t, outer.Contains(outer), "an interval contains itself")
    assert.True(t, outer.Contains(Interval{at(9, 0), at(10, 0)}), "shared start endpoint")
    assert.True(t, outer.Contains(Interval{at(11, 0), at(12, 0)}), "shared end endpoint")
    assert.False(t, outer.Contains(Interval{at(8, 0), at(10, 0)}))
    assert.False(t, outer.Contains(Interval{at(11, 0), at(12, 30)}))
}

func TestClamp(t *testing.T) {
    iv := Interval{at(9, 0), at(12, 0)}

    clamped, ok := Clamp(iv, at(10, 0), at(11, 0))
    require.True(t, ok)
    assert.Equal(t, at(10, 0), clamped.Start)
    assert.Equal(t, at(11, 0), clamped.End)

    _, ok = Clamp(iv, at(13, 0), at(14, 0))
    assert.False(t, ok, "interval entirely outside the window clamps to nothing")

    _, ok = Clamp(Interval{at(9, 0), at(10, 0)}, at(10, 0), at(11, 0))
    assert.False(t, ok, "touching windows produce an empty clamp")
}
