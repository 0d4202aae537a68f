package service

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/queue"
    "github.com/iliyamo/library-seat-reservation/internal/repository"
)

// memStore is an in-memory stand-in for the seat and booking
// repositories.  It mirrors seat entries the same way the SQL layer
// does: booking writes and entry writes happen together.  The mutex
// stands in for the database's own isolation so concurrent tests stay
// race-clean.
type memStore struct {
    mu          sync.Mutex
    seats       map[uint64]*model.Seat
    bookings    map[uint64]*model.Booking
    nextBooking uint64
    nextEntry   uint64
}

func newMemStore() *memStore {
    return &memStore{
        seats:    make(map[uint64]*model.Seat),
        bookings: make(map[uint64]*model.Booking),
    }
}

func (m *memStore) addSeat(id uint64, location string, number uint32) *model.Seat {
    s := &model.Seat{ID: id, Location: location, SeatNumber: number}
    m.seats[id] = s
    return s
}

func (m *memStore) GetByKey(_ context.Context, location string, number uint32) (*model.Seat, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, s := range m.seats {
        if s.Location == location && s.SeatNumber == number {
            cp := *s
            return &cp, nil
        }
    }
    return nil, repository.ErrSeatNotFound
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    s, ok := m.seats[id]
    if !ok {
        return nil, repository.ErrSeatNotFound
    }
    cp := *s
    return &cp, nil
}

func (m *memStore) ListByLocation(_ context.Context, location string) ([]model.Seat, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]model.Seat, 0)
    for _, s := range m.seats {
        if s.Location == location {
            out = append(out, *s)
        }
    }
    return out, nil
}

func (m *memStore) Create(_ context.Context, b *model.Booking, entry *model.SeatEntry) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.nextBooking++
    b.ID = m.nextBooking
    entry.BookingID = b.ID
    m.nextEntry++
    entry.ID = m.nextEntry

    cp := *b
    m.bookings[b.ID] = &cp
    seat := m.seats[entry.SeatID]
    seat.Entries = append(seat.Entries, *entry)
    return nil
}

func (m *memStore) getBooking(id uint64) (*model.Booking, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    b, ok := m.bookings[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    cp := *b
    cp.Breaks = append([]model.Break(nil), b.Breaks...)
    return &cp, nil
}

func (m *memStore) ActiveForUser(_ context.Context, userID uint64, now time.Time) (*model.Booking, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, b := range m.bookings {
        active := b.Status == model.BookingPending || b.Status == model.BookingConfirmed
        if b.UserID == userID && active && b.EndsAt.After(now) {
            cp := *b
            return &cp, nil
        }
    }
    return nil, nil
}

func (m *memStore) AddBreak(_ context.Context, bookingID uint64, br *model.Break, entry *model.SeatEntry) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    b := m.bookings[bookingID]
    m.nextEntry++
    br.ID = m.nextEntry
    br.BookingID = bookingID
    b.Breaks = append(b.Breaks, *br)

    m.nextEntry++
    entry.ID = m.nextEntry
    seat := m.seats[entry.SeatID]
    seat.Entries = append(seat.Entries, *entry)
    return nil
}

func (m *memStore) Cancel(_ context.Context, bookingID uint64, reason string, at time.Time) (int64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    b, ok := m.bookings[bookingID]
    if !ok {
        return 0, repository.ErrBookingNotFound
    }
    b.Status = model.BookingCancelled
    b.CancellationReason = &reason
    b.DeadlineTaskID = ""

    seat := m.seats[b.SeatID]
    kept := seat.Entries[:0]
    var removed int64
    for _, e := range seat.Entries {
        if e.BookingID == bookingID {
            removed++
            continue
        }
        kept = append(kept, e)
    }
    seat.Entries = kept
    return removed, nil
}

func (m *memStore) ConfirmAttendance(_ context.Context, bookingID uint64, at time.Time) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    b := m.bookings[bookingID]
    b.AttendanceConfirmed = true
    t := at
    b.AttendanceConfirmedAt = &t
    b.Status = model.BookingConfirmed
    b.DeadlineTaskID = ""
    return nil
}

func (m *memStore) SetDeadlineTask(_ context.Context, bookingID uint64, taskID string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.bookings[bookingID].DeadlineTaskID = taskID
    return nil
}

func (m *memStore) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]model.Booking, 0)
    for _, b := range m.bookings {
        if b.UserID == userID {
            out = append(out, *b)
        }
    }
    return out, nil
}

func (m *memStore) PendingUnconfirmed(_ context.Context) ([]model.Booking, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]model.Booking, 0)
    for _, b := range m.bookings {
        if b.Status == model.BookingPending && !b.AttendanceConfirmed {
            out = append(out, *b)
        }
    }
    return out, nil
}

// bookingStoreAdapter satisfies BookingStore on top of memStore; the
// seat GetByID and the booking GetByID collide, so the booking side
// goes through this adapter.
type bookingStoreAdapter struct{ *memStore }

func (a bookingStoreAdapter) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    return a.getBooking(id)
}

type fakeUsers struct{ users map[uint64]model.User }

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
    u, ok := f.users[id]
    if !ok {
        return model.User{}, errors.New("user not found")
    }
    return u, nil
}

type fakeLocations struct{ last map[uint64]model.UserLocation }

func (f *fakeLocations) UpsertLocation(_ context.Context, loc model.UserLocation) error {
    f.last[loc.UserID] = loc
    return nil
}

func (f *fakeLocations) LastLocation(_ context.Context, userID uint64) (*model.UserLocation, error) {
    loc, ok := f.last[userID]
    if !ok {
        return nil, repository.ErrNoLocation
    }
    return &loc, nil
}

type fakeDeadlines struct {
    mu        sync.Mutex
    scheduled map[string]time.Time // task id -> fire instant
    cancelled []string
    nextID    int
}

func newFakeDeadlines() *fakeDeadlines {
    return &fakeDeadlines{scheduled: make(map[string]time.Time)}
}

func (f *fakeDeadlines) Schedule(_ context.Context, bookingID uint64, at time.Time) (string, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.nextID++
    id := fmt.Sprintf("task-%d", f.nextID)
    f.scheduled[id] = at
    return id, nil
}

func (f *fakeDeadlines) Cancel(_ context.Context, taskID string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    delete(f.scheduled, taskID)
    f.cancelled = append(f.cancelled, taskID)
    return nil
}

type fakeEvents struct {
    mu        sync.Mutex
    published []queue.BookingEvent
}

func (f *fakeEvents) Publish(_ context.Context, ev queue.BookingEvent) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.published = append(f.published, ev)
    return nil
}

// Test coordinates: a point in Varanasi and offsets of known distance.
const (
    venueLat = 25.261071
    venueLon = 82.983812
)

type fixture struct {
    svc       *BookingService
    store     *memStore
    users     *fakeUsers
    locations *fakeLocations
    deadlines *fakeDeadlines
    events    *fakeEvents
    clock     *time.Time
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    store := newMemStore()
    store.addSeat(1, "main-hall", 7)
    store.addSeat(2, "main-hall", 8)

    users := &fakeUsers{users: map[uint64]model.User{
        1: {ID: 1, Name: "Asha", Email: "asha@example.com"},
        2: {ID: 2, Name: "Ravi", Email: "ravi@example.com"},
        3: {ID: 3, Name: "Meera", Email: "meera@example.com"},
    }}
    locations := &fakeLocations{last: make(map[uint64]model.UserLocation)}
    deadlines := newFakeDeadlines()
    events := &fakeEvents{}

    svc := NewBookingService(store, bookingStoreAdapter{store}, users, locations, deadlines, events, Policy{
        Deadline:     20 * time.Minute,
        SingleActive: true,
        VenueLat:     venueLat,
        VenueLon:     venueLon,
        RadiusMeters: 100,
    })
    clock := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
    svc.now = func() time.Time { return clock }
    return &fixture{
        svc: svc, store: store, users: users, locations: locations,
        deadlines: deadlines, events: events, clock: &clock,
    }
}

func (f *fixture) at(hour, min int) time.Time {
    return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func TestCreateBooking(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    assert.Equal(t, model.BookingPending, b.Status)
    assert.NotEmpty(t, b.Reference)
    assert.Equal(t, "Asha", b.UserName)
    assert.Equal(t, uint32(7), b.SeatNumber)

    // The deadline task fires 20 minutes after the start.
    require.NotEmpty(t, b.DeadlineTaskID)
    assert.Equal(t, f.at(9, 20), f.deadlines.scheduled[b.DeadlineTaskID])

    // The seat schedule mirrors the booking.
    seat := f.store.seats[1]
    require.Len(t, seat.Entries, 1)
    assert.Equal(t, b.ID, seat.Entries[0].BookingID)
    assert.Equal(t, model.EntryActive, seat.Entries[0].Status)

    require.Len(t, f.events.published, 1)
    assert.Equal(t, queue.EventBookingCreated, f.events.published[0].Kind)
}

func TestCreateRejectsOverlap(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    _, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    // Partial overlap by another member is refused.
    _, err = f.svc.Create(ctx, 2, "main-hall", 7, f.at(11, 0), f.at(13, 0))
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)

    // Touching windows share only an endpoint and are fine.
    _, err = f.svc.Create(ctx, 2, "main-hall", 7, f.at(12, 0), f.at(14, 0))
    require.NoError(t, err)
}

func TestCreateRejectsShortWindow(t *testing.T) {
    f := newFixture(t)

    _, err := f.svc.Create(context.Background(), 1, "main-hall", 7, f.at(9, 0), f.at(9, 20))
    var validation *ValidationError
    require.ErrorAs(t, err, &validation)
    assert.Contains(t, validation.Msg, "30 minutes")
}

func TestCreateUnknownSeat(t *testing.T) {
    f := newFixture(t)

    _, err := f.svc.Create(context.Background(), 1, "annex", 99, f.at(9, 0), f.at(10, 0))
    var notFound *NotFoundError
    require.ErrorAs(t, err, &notFound)
}

func TestSingleActiveBookingPolicy(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    // A second booking on a different seat is still refused.
    _, err = f.svc.Create(ctx, 1, "main-hall", 8, f.at(13, 0), f.at(14, 0))
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Contains(t, conflict.Msg, b.Reference)

    // Cancelling frees the member to book again.
    require.NoError(t, f.svc.Cancel(ctx, 1, b.ID, ""))
    _, err = f.svc.Create(ctx, 1, "main-hall", 8, f.at(13, 0), f.at(14, 0))
    require.NoError(t, err)
}

func TestBookingInsideBreak(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    _, err = f.svc.AddBreak(ctx, 1, b.ID, f.at(10, 0), f.at(10, 40))
    require.NoError(t, err)

    // A window inside the break is bookable by someone else.
    inner, err := f.svc.Create(ctx, 2, "main-hall", 7, f.at(10, 5), f.at(10, 35))
    require.NoError(t, err)
    assert.Equal(t, model.BookingPending, inner.Status)

    // A window poking past the break end is not.
    _, err = f.svc.Create(ctx, 3, "main-hall", 7, f.at(10, 5), f.at(10, 45))
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)

    // The break window is now claimed; a second taker is refused.
    _, err = f.svc.Create(ctx, 3, "main-hall", 7, f.at(10, 0), f.at(10, 30))
    require.ErrorAs(t, err, &conflict)
}

func TestAddBreakValidation(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    // Break must lie inside the booking window.
    _, err = f.svc.AddBreak(ctx, 1, b.ID, f.at(11, 30), f.at(12, 30))
    var validation *ValidationError
    require.ErrorAs(t, err, &validation)

    // Breaks of one booking must not overlap each other.
    _, err = f.svc.AddBreak(ctx, 1, b.ID, f.at(10, 0), f.at(10, 40))
    require.NoError(t, err)
    _, err = f.svc.AddBreak(ctx, 1, b.ID, f.at(10, 30), f.at(11, 10))
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)

    // Only the owner may add breaks.
    _, err = f.svc.AddBreak(ctx, 2, b.ID, f.at(11, 0), f.at(11, 30))
    var authz *AuthorizationError
    require.ErrorAs(t, err, &authz)
}

// gatedBookingStore holds the first two booking reads at a rendezvous
// so two requests observe the same pre-write state before either takes
// the seat mutex.  Later reads pass straight through.
type gatedBookingStore struct {
    bookingStoreAdapter
    calls int32
    gate  sync.WaitGroup
}

func (g *gatedBookingStore) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    if atomic.AddInt32(&g.calls, 1) <= 2 {
        g.gate.Done()
        g.gate.Wait()
    }
    return g.bookingStoreAdapter.GetByID(ctx, id)
}

func TestConcurrentBreaksCannotOverlap(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    // Both requests read the break list before either holds the seat
    // mutex; the loser must still be validated against the winner's
    // committed break.
    gated := &gatedBookingStore{bookingStoreAdapter: bookingStoreAdapter{f.store}}
    gated.gate.Add(2)
    f.svc.bookings = gated

    windows := [][2]time.Time{
        {f.at(10, 0), f.at(10, 40)},
        {f.at(10, 30), f.at(11, 10)},
    }
    errs := make(chan error, len(windows))
    for _, w := range windows {
        go func(start, end time.Time) {
            _, err := f.svc.AddBreak(ctx, 1, b.ID, start, end)
            errs <- err
        }(w[0], w[1])
    }

    var rejected []error
    for range windows {
        if err := <-errs; err != nil {
            rejected = append(rejected, err)
        }
    }
    require.Len(t, rejected, 1)
    var conflict *ConflictError
    require.ErrorAs(t, rejected[0], &conflict)

    got, err := f.svc.GetBooking(ctx, 1, b.ID)
    require.NoError(t, err)
    assert.Len(t, got.Breaks, 1)
}

func TestConcurrentCreateSingleActive(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    errs := make(chan error, 2)
    for _, number := range []uint32{7, 8} {
        go func(n uint32) {
            _, err := f.svc.Create(ctx, 1, "main-hall", n, f.at(9, 0), f.at(12, 0))
            errs <- err
        }(number)
    }

    var created, refused int
    for i := 0; i < 2; i++ {
        if err := <-errs; err == nil {
            created++
        } else {
            var conflict *ConflictError
            require.ErrorAs(t, err, &conflict)
            refused++
        }
    }
    assert.Equal(t, 1, created)
    assert.Equal(t, 1, refused)
}

func TestDeadlineAutoCancel(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    // 21 minutes past the start, attendance still unconfirmed.
    *f.clock = f.at(9, 21)
    require.NoError(t, f.svc.EvaluateDeadline(ctx, b.ID))

    got, err := f.svc.GetBooking(ctx, 1, b.ID)
    require.NoError(t, err)
    assert.Equal(t, model.BookingCancelled, got.Status)
    require.NotNil(t, got.CancellationReason)
    assert.Equal(t, model.CancelReasonNoShow, *got.CancellationReason)

    // The seat is free again for the rest of the window.
    _, err = f.svc.Create(ctx, 2, "main-hall", 7, f.at(9, 30), f.at(11, 0))
    require.NoError(t, err)
}

func TestDeadlineLeavesConfirmedAlone(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    f.locations.last[1] = model.UserLocation{UserID: 1, Latitude: venueLat, Longitude: venueLon}
    *f.clock = f.at(9, 5)
    _, err = f.svc.ConfirmAttendance(ctx, 1, b.ID)
    require.NoError(t, err)

    *f.clock = f.at(9, 25)
    require.NoError(t, f.svc.EvaluateDeadline(ctx, b.ID))

    got, err := f.svc.GetBooking(ctx, 1, b.ID)
    require.NoError(t, err)
    assert.Equal(t, model.BookingConfirmed, got.Status)
}

func TestDeadlineFiredEarlyRetries(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    *f.clock = f.at(9, 10) // before the 9:20 deadline
    err = f.svc.EvaluateDeadline(ctx, b.ID)
    require.Error(t, err)

    got, err := f.svc.GetBooking(ctx, 1, b.ID)
    require.NoError(t, err)
    assert.Equal(t, model.BookingPending, got.Status)
}

func TestConfirmAttendance(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)
    taskID := b.DeadlineTaskID

    // No location reported yet.
    _, err = f.svc.ConfirmAttendance(ctx, 1, b.ID)
    var presence *PresenceError
    require.ErrorAs(t, err, &presence)
    assert.True(t, presence.NoLocation)

    // Roughly 150 meters north of the building: outside the fence.
    require.NoError(t, f.svc.ReportLocation(ctx, 1, venueLat+0.00135, venueLon))
    _, err = f.svc.ConfirmAttendance(ctx, 1, b.ID)
    require.ErrorAs(t, err, &presence)
    assert.False(t, presence.NoLocation)
    assert.InDelta(t, 150, presence.Distance, 2)

    // Roughly 80 meters away: inside.
    require.NoError(t, f.svc.ReportLocation(ctx, 1, venueLat+0.00072, venueLon))
    got, err := f.svc.ConfirmAttendance(ctx, 1, b.ID)
    require.NoError(t, err)
    assert.Equal(t, model.BookingConfirmed, got.Status)
    assert.True(t, got.AttendanceConfirmed)
    assert.Contains(t, f.deadlines.cancelled, taskID)

    // Confirming again is a no-op.
    again, err := f.svc.ConfirmAttendance(ctx, 1, b.ID)
    require.NoError(t, err)
    assert.Equal(t, model.BookingConfirmed, again.Status)
}

func TestConfirmAttendanceOwnership(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    _, err = f.svc.ConfirmAttendance(ctx, 2, b.ID)
    var authz *AuthorizationError
    require.ErrorAs(t, err, &authz)
}

func TestConfirmAfterDeadlineCancel(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)
    require.NoError(t, f.svc.ReportLocation(ctx, 1, venueLat, venueLon))

    *f.clock = f.at(9, 21)
    require.NoError(t, f.svc.EvaluateDeadline(ctx, b.ID))

    // The confirm re-reads under the seat mutex, so it sees the
    // cancellation even though the member is inside the fence.
    _, err = f.svc.ConfirmAttendance(ctx, 1, b.ID)
    var validation *ValidationError
    require.ErrorAs(t, err, &validation)
    assert.Contains(t, validation.Msg, "cancelled")
}

func TestCancelIdempotent(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    require.NoError(t, f.svc.Cancel(ctx, 1, b.ID, "change of plans"))
    require.NoError(t, f.svc.Cancel(ctx, 1, b.ID, "change of plans"))

    assert.Empty(t, f.store.seats[1].Entries)

    // Unknown booking.
    err = f.svc.Cancel(ctx, 1, 999, "")
    var notFound *NotFoundError
    require.ErrorAs(t, err, &notFound)
}

func TestCancelReleasesBreakEntries(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)
    _, err = f.svc.AddBreak(ctx, 1, b.ID, f.at(10, 0), f.at(10, 40))
    require.NoError(t, err)
    require.Len(t, f.store.seats[1].Entries, 2)

    require.NoError(t, f.svc.Cancel(ctx, 1, b.ID, ""))
    assert.Empty(t, f.store.seats[1].Entries)
}

func TestRecoverDeadlines(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    b1, err := f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)
    b2, err := f.svc.Create(ctx, 2, "main-hall", 8, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    // Simulate a restart that lost the queue.
    f.deadlines.scheduled = make(map[string]time.Time)

    require.NoError(t, f.svc.RecoverDeadlines(ctx))
    assert.Len(t, f.deadlines.scheduled, 2)

    for _, id := range []uint64{b1.ID, b2.ID} {
        got, err := f.svc.GetBooking(ctx, id, id)
        require.NoError(t, err)
        assert.NotEmpty(t, got.DeadlineTaskID)
        assert.Equal(t, f.at(9, 20), f.deadlines.scheduled[got.DeadlineTaskID])
    }
}

func TestAvailabilityQueries(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    _, err := f.svc.Availability(ctx, "annex", 1, f.at(9, 0), f.at(17, 0))
    var notFound *NotFoundError
    require.ErrorAs(t, err, &notFound)

    _, err = f.svc.Availability(ctx, "main-hall", 7, f.at(17, 0), f.at(9, 0))
    var validation *ValidationError
    require.ErrorAs(t, err, &validation)

    st, err := f.svc.Availability(ctx, "main-hall", 7, f.at(9, 0), f.at(17, 0))
    require.NoError(t, err)
    require.Len(t, st.Slots, 1)
    assert.Equal(t, 480, st.Slots[0].DurationMinutes())

    _, err = f.svc.Create(ctx, 1, "main-hall", 7, f.at(9, 0), f.at(12, 0))
    require.NoError(t, err)

    st, err = f.svc.Availability(ctx, "main-hall", 7, f.at(9, 0), f.at(17, 0))
    require.NoError(t, err)
    require.Len(t, st.Slots, 1)
    assert.Equal(t, f.at(12, 0), st.Slots[0].Start)
}

func TestReportLocationValidation(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    var validation *ValidationError
    require.ErrorAs(t, f.svc.ReportLocation(ctx, 1, 91, 0), &validation)
    require.ErrorAs(t, f.svc.ReportLocation(ctx, 1, 0, 181), &validation)
    require.NoError(t, f.svc.ReportLocation(ctx, 1, venueLat, venueLon))
}
