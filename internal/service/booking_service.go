// Package service orchestrates the booking workflows on top of the
// pure scheduling core: admission of candidate windows, break
// recording, presence verification inside the geofence and the
// 20-minute auto-cancel deadline.
package service

import (
    "context"
    "fmt"
    "log"
    "strconv"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/queue"
    "github.com/iliyamo/library-seat-reservation/internal/repository"
    "github.com/iliyamo/library-seat-reservation/internal/schedule"
)

// SeatStore loads seats together with their schedule entries.
type SeatStore interface {
    GetByKey(ctx context.Context, location string, number uint32) (*model.Seat, error)
    GetByID(ctx context.Context, id uint64) (*model.Seat, error)
    ListByLocation(ctx context.Context, location string) ([]model.Seat, error)
}

// BookingStore persists bookings, breaks and the seat entries they
// project, keeping booking and entry writes in one transaction.
type BookingStore interface {
    Create(ctx context.Context, b *model.Booking, entry *model.SeatEntry) error
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
    ActiveForUser(ctx context.Context, userID uint64, now time.Time) (*model.Booking, error)
    AddBreak(ctx context.Context, bookingID uint64, br *model.Break, entry *model.SeatEntry) error
    Cancel(ctx context.Context, bookingID uint64, reason string, at time.Time) (int64, error)
    ConfirmAttendance(ctx context.Context, bookingID uint64, at time.Time) error
    SetDeadlineTask(ctx context.Context, bookingID uint64, taskID string) error
    ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
    PendingUnconfirmed(ctx context.Context) ([]model.Booking, error)
}

// UserStore resolves members for identity snapshots on bookings.
type UserStore interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// LocationStore records and serves the member's last reported position.
type LocationStore interface {
    UpsertLocation(ctx context.Context, loc model.UserLocation) error
    LastLocation(ctx context.Context, userID uint64) (*model.UserLocation, error)
}

// DeadlineScheduler manages the durable auto-cancel wake-ups.  Schedule
// enqueues a task that fires at the given instant and returns its id;
// Cancel removes a previously scheduled task and tolerates ids that no
// longer exist.
type DeadlineScheduler interface {
    Schedule(ctx context.Context, bookingID uint64, at time.Time) (string, error)
    Cancel(ctx context.Context, taskID string) error
}

// EventPublisher emits booking lifecycle events to the broker.
type EventPublisher interface {
    Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Policy carries the tunable scheduling rules.
type Policy struct {
    Deadline     time.Duration // grace period before auto-cancel
    SingleActive bool          // at most one active booking per member
    VenueLat     float64       // library latitude
    VenueLon     float64       // library longitude
    RadiusMeters float64       // attendance geofence radius
}

// BookingService implements the booking workflows.  All timestamps are
// handled in UTC; now is injectable for tests.
type BookingService struct {
    seats     SeatStore
    bookings  BookingStore
    users     UserStore
    locations LocationStore
    deadlines DeadlineScheduler
    events    EventPublisher
    policy    Policy
    locks     *seatLocks
    now       func() time.Time
}

// NewBookingService wires the service with its stores and policy.
func NewBookingService(
    seats SeatStore,
    bookings BookingStore,
    users UserStore,
    locations LocationStore,
    deadlines DeadlineScheduler,
    events EventPublisher,
    policy Policy,
) *BookingService {
    return &BookingService{
        seats:     seats,
        bookings:  bookings,
        users:     users,
        locations: locations,
        deadlines: deadlines,
        events:    events,
        policy:    policy,
        locks:     newSeatLocks(),
        now:       func() time.Time { return time.Now().UTC() },
    }
}

// SeatStatus pairs a seat with its computed availability over a query
// window.
type SeatStatus struct {
    Seat         model.Seat
    Slots        []schedule.Slot
    Availability schedule.SeatAvailability
}

// Availability returns the free slots and classification of one seat
// over [queryStart, queryEnd).  A zero queryEnd queries the open
// future.
func (s *BookingService) Availability(ctx context.Context, location string, number uint32, queryStart, queryEnd time.Time) (*SeatStatus, error) {
    if err := validateQueryWindow(queryStart, queryEnd); err != nil {
        return nil, err
    }
    seat, err := s.seats.GetByKey(ctx, location, number)
    if err != nil {
        if err == repository.ErrSeatNotFound {
            return nil, &NotFoundError{Msg: fmt.Sprintf("seat %d at %s not found", number, location)}
        }
        return nil, err
    }
    now := s.now()
    slots := schedule.FreeSlots(seat.Entries, queryStart, queryEnd, now)
    return &SeatStatus{
        Seat:         *seat,
        Slots:        slots,
        Availability: schedule.Availability(seat.Entries, slots, queryStart, queryEnd, now),
    }, nil
}

// ListSeats returns every seat of a location with availability computed
// over the query window.
func (s *BookingService) ListSeats(ctx context.Context, location string, queryStart, queryEnd time.Time) ([]SeatStatus, error) {
    if err := validateQueryWindow(queryStart, queryEnd); err != nil {
        return nil, err
    }
    seats, err := s.seats.ListByLocation(ctx, location)
    if err != nil {
        return nil, err
    }
    now := s.now()
    out := make([]SeatStatus, 0, len(seats))
    for _, seat := range seats {
        slots := schedule.FreeSlots(seat.Entries, queryStart, queryEnd, now)
        out = append(out, SeatStatus{
            Seat:         seat,
            Slots:        slots,
            Availability: schedule.Availability(seat.Entries, slots, queryStart, queryEnd, now),
        })
    }
    return out, nil
}

// Create books a seat for the member over [startsAt, endsAt).  The
// admission check and the insert run under the seat's mutex so two
// concurrent requests for the same seat cannot both pass the check.
// On success a durable auto-cancel task is scheduled for the
// attendance deadline.
func (s *BookingService) Create(ctx context.Context, userID uint64, location string, number uint32, startsAt, endsAt time.Time) (*model.Booking, error) {
    user, err := s.users.GetByID(ctx, userID)
    if err != nil {
        return nil, err
    }

    if s.policy.SingleActive {
        // The active-booking check spans all seats, so serialize
        // creates per member as well; otherwise two requests on
        // different seats could both pass it.  Member lock before seat
        // lock, everywhere.
        release := s.locks.acquire(memberKey(userID))
        defer release()
    }
    unlock := s.locks.acquire(model.SeatKey(location, number))
    defer unlock()

    seat, err := s.seats.GetByKey(ctx, location, number)
    if err != nil {
        if err == repository.ErrSeatNotFound {
            return nil, &NotFoundError{Msg: fmt.Sprintf("seat %d at %s not found", number, location)}
        }
        return nil, err
    }

    now := s.now()
    adm := schedule.CheckAdmission(seat.Entries, schedule.Interval{Start: startsAt, End: endsAt}, now)
    if !adm.Admitted() {
        return nil, admissionError(adm)
    }

    if s.policy.SingleActive {
        active, err := s.bookings.ActiveForUser(ctx, userID, now)
        if err != nil {
            return nil, err
        }
        if active != nil {
            return nil, conflictf("you already have an active booking (reference %s)", active.Reference)
        }
    }

    b := &model.Booking{
        Reference:    uuid.NewString(),
        UserID:       user.ID,
        UserName:     user.Name,
        UserEmail:    user.Email,
        SeatID:       seat.ID,
        SeatLocation: seat.Location,
        SeatNumber:   seat.SeatNumber,
        StartsAt:     startsAt,
        EndsAt:       endsAt,
        Status:       model.BookingPending,
    }
    entry := &model.SeatEntry{
        SeatID:    seat.ID,
        UserID:    user.ID,
        UserName:  user.Name,
        UserEmail: user.Email,
        StartsAt:  startsAt,
        EndsAt:    endsAt,
        Status:    model.EntryActive,
        BookedAt:  now,
    }
    if err := s.bookings.Create(ctx, b, entry); err != nil {
        return nil, err
    }

    // A failed enqueue is not fatal: the recovery scan rebuilds
    // wake-ups for every pending unconfirmed booking on startup.
    taskID, err := s.deadlines.Schedule(ctx, b.ID, b.Deadline(s.policy.Deadline))
    if err != nil {
        log.Printf("booking-service: schedule deadline for booking %d failed: %v", b.ID, err)
    } else {
        if err := s.bookings.SetDeadlineTask(ctx, b.ID, taskID); err != nil {
            log.Printf("booking-service: record deadline task for booking %d failed: %v", b.ID, err)
        }
        b.DeadlineTaskID = taskID
    }

    s.publish(ctx, queue.EventBookingCreated, b, "")
    return b, nil
}

// AddBreak carves a break out of the member's booking, releasing the
// seat for that sub-window.
func (s *BookingService) AddBreak(ctx context.Context, userID, bookingID uint64, startsAt, endsAt time.Time) (*model.Break, error) {
    b, unlock, err := s.lockedBooking(ctx, userID, bookingID)
    if err != nil {
        return nil, err
    }
    defer unlock()

    now := s.now()
    switch {
    case b.Status == model.BookingCancelled:
        return nil, validationf("booking %s is cancelled", b.Reference)
    case b.EffectiveStatus(now) == model.BookingCompleted:
        return nil, validationf("booking %s has already ended", b.Reference)
    }

    seat, err := s.seats.GetByID(ctx, b.SeatID)
    if err != nil {
        return nil, err
    }
    chk := schedule.CheckBreak(b, seat.Entries, schedule.Interval{Start: startsAt, End: endsAt}, now)
    if !chk.OK() {
        return nil, breakError(chk)
    }

    br := &model.Break{StartsAt: startsAt, EndsAt: endsAt}
    entry := &model.SeatEntry{
        SeatID:    b.SeatID,
        BookingID: b.ID,
        UserID:    b.UserID,
        UserName:  b.UserName,
        UserEmail: b.UserEmail,
        StartsAt:  startsAt,
        EndsAt:    endsAt,
        Status:    model.EntryOnBreak,
        BookedAt:  now,
    }
    if err := s.bookings.AddBreak(ctx, b.ID, br, entry); err != nil {
        return nil, err
    }

    s.publish(ctx, queue.EventBreakAdded, b, "")
    return br, nil
}

// Cancel withdraws the member's booking and releases all of its seat
// entries.  Cancelling an already cancelled booking is a no-op.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID uint64, reason string) error {
    b, unlock, err := s.lockedBooking(ctx, userID, bookingID)
    if err != nil {
        return err
    }
    defer unlock()

    if b.Status == model.BookingCancelled {
        return nil // idempotent
    }
    now := s.now()
    if b.EffectiveStatus(now) == model.BookingCompleted {
        return validationf("booking %s has already ended", b.Reference)
    }
    if reason == "" {
        reason = "cancelled by member"
    }
    return s.cancelLocked(ctx, b, reason, now)
}

// cancelLocked performs the shared cancellation path for member
// requests and deadline expiry.  Callers hold the seat mutex and have
// already decided the booking must go.
func (s *BookingService) cancelLocked(ctx context.Context, b *model.Booking, reason string, now time.Time) error {
    removed, err := s.bookings.Cancel(ctx, b.ID, reason, now)
    if err != nil {
        return err
    }
    // Every booking owns at least its active entry, so zero released
    // rows means the ledger and the seat schedule have diverged.
    if removed == 0 {
        return &ConsistencyError{
            Msg: fmt.Sprintf("booking %s cancelled but no seat entries were released", b.Reference),
        }
    }
    if want := int64(1 + len(b.Breaks)); removed != want {
        log.Printf("booking-service: booking %d released %d entries, expected %d", b.ID, removed, want)
    }

    if b.DeadlineTaskID != "" {
        if err := s.deadlines.Cancel(ctx, b.DeadlineTaskID); err != nil {
            log.Printf("booking-service: delete deadline task %s failed: %v", b.DeadlineTaskID, err)
        }
    }

    s.publish(ctx, queue.EventBookingCancelled, b, reason)
    return nil
}

// ConfirmAttendance verifies the member's presence inside the geofence
// and transitions the booking to confirmed.  Confirming twice is a
// no-op.  The whole check-and-confirm runs under the seat mutex so a
// deadline task firing at the same moment cannot cancel the booking
// between the status check and the confirm write.
func (s *BookingService) ConfirmAttendance(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
    b, unlock, err := s.lockedBooking(ctx, userID, bookingID)
    if err != nil {
        return nil, err
    }
    defer unlock()

    if b.AttendanceConfirmed {
        return b, nil // idempotent
    }
    now := s.now()
    switch {
    case b.Status == model.BookingCancelled:
        return nil, validationf("booking %s is cancelled", b.Reference)
    case b.EffectiveStatus(now) == model.BookingCompleted:
        return nil, validationf("booking %s has already ended", b.Reference)
    }

    loc, err := s.locations.LastLocation(ctx, userID)
    if err != nil {
        if err == repository.ErrNoLocation {
            return nil, &PresenceError{
                Msg:        "no location reported yet; enable location sharing and try again",
                NoLocation: true,
            }
        }
        return nil, err
    }
    within, dist := schedule.WithinRadius(loc.Latitude, loc.Longitude,
        s.policy.VenueLat, s.policy.VenueLon, s.policy.RadiusMeters)
    if !within {
        return nil, &PresenceError{
            Msg:      fmt.Sprintf("you are %.0f meters from the library; come within %.0f meters to confirm", dist, s.policy.RadiusMeters),
            Distance: dist,
        }
    }

    if err := s.bookings.ConfirmAttendance(ctx, b.ID, now); err != nil {
        return nil, err
    }
    if b.DeadlineTaskID != "" {
        if err := s.deadlines.Cancel(ctx, b.DeadlineTaskID); err != nil {
            log.Printf("booking-service: delete deadline task %s failed: %v", b.DeadlineTaskID, err)
        }
    }
    b.AttendanceConfirmed = true
    b.AttendanceConfirmedAt = &now
    b.Status = model.BookingConfirmed
    b.DeadlineTaskID = ""

    s.publish(ctx, queue.EventBookingConfirmed, b, "")
    return b, nil
}

// EvaluateDeadline is the auto-cancel task handler.  It re-checks the
// booking's state at fire time and cancels it only when attendance is
// still unconfirmed.  Errors are returned so the task queue retries
// transient failures.
func (s *BookingService) EvaluateDeadline(ctx context.Context, bookingID uint64) error {
    b, err := s.bookings.GetByID(ctx, bookingID)
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return nil
        }
        return err
    }
    if b.AttendanceConfirmed || b.Status != model.BookingPending {
        return nil
    }

    // The first read only located the seat; decide on a fresh read
    // under the seat mutex so a concurrent confirm is not lost.
    unlock := s.locks.acquire(model.SeatKey(b.SeatLocation, b.SeatNumber))
    defer unlock()

    b, err = s.bookings.GetByID(ctx, bookingID)
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return nil
        }
        return err
    }
    if b.AttendanceConfirmed || b.Status != model.BookingPending {
        return nil
    }
    now := s.now()
    if now.Before(b.Deadline(s.policy.Deadline)) {
        // Fired early (clock drift or recovery rescheduling); the task
        // queue will retry after its backoff.
        return fmt.Errorf("deadline for booking %d not reached yet", b.ID)
    }
    b.DeadlineTaskID = "" // the firing task removes itself
    return s.cancelLocked(ctx, b, model.CancelReasonNoShow, now)
}

// RecoverDeadlines rebuilds auto-cancel wake-ups after a restart.  Every
// pending unconfirmed booking gets a fresh task; overdue deadlines fire
// immediately.
func (s *BookingService) RecoverDeadlines(ctx context.Context) error {
    pending, err := s.bookings.PendingUnconfirmed(ctx)
    if err != nil {
        return err
    }
    for i := range pending {
        b := &pending[i]
        taskID, err := s.deadlines.Schedule(ctx, b.ID, b.Deadline(s.policy.Deadline))
        if err != nil {
            log.Printf("booking-service: recover deadline for booking %d failed: %v", b.ID, err)
            continue
        }
        if err := s.bookings.SetDeadlineTask(ctx, b.ID, taskID); err != nil {
            log.Printf("booking-service: record recovered task for booking %d failed: %v", b.ID, err)
        }
    }
    if len(pending) > 0 {
        log.Printf("booking-service: recovered %d attendance deadlines", len(pending))
    }
    return nil
}

// ReportLocation stores the member's latest position sample.
func (s *BookingService) ReportLocation(ctx context.Context, userID uint64, lat, lon float64) error {
    if lat < -90 || lat > 90 {
        return validationf("latitude must be between -90 and 90")
    }
    if lon < -180 || lon > 180 {
        return validationf("longitude must be between -180 and 180")
    }
    return s.locations.UpsertLocation(ctx, model.UserLocation{
        UserID:     userID,
        Latitude:   lat,
        Longitude:  lon,
        RecordedAt: s.now(),
    })
}

// MyBookings lists the member's bookings, newest first.
func (s *BookingService) MyBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
    return s.bookings.ListByUser(ctx, userID)
}

// GetBooking loads one booking, enforcing ownership.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
    return s.ownedBooking(ctx, userID, bookingID)
}

// Now returns the service clock reading; handlers use it to derive
// effective statuses consistently.
func (s *BookingService) Now() time.Time { return s.now() }

// ownedBooking loads a booking and verifies the caller owns it.
func (s *BookingService) ownedBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
    b, err := s.bookings.GetByID(ctx, bookingID)
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return nil, &NotFoundError{Msg: fmt.Sprintf("booking %d not found", bookingID)}
        }
        return nil, err
    }
    if b.UserID != userID {
        return nil, &AuthorizationError{Msg: "booking belongs to another member"}
    }
    return b, nil
}

// lockedBooking takes the booking's seat mutex and re-loads the booking
// under it.  The first read only learns which seat to lock; every
// decision must use the returned booking, which reflects whatever a
// concurrent break, cancel or deadline committed before the lock was
// won.  The returned unlock must be called once.
func (s *BookingService) lockedBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, func(), error) {
    b, err := s.ownedBooking(ctx, userID, bookingID)
    if err != nil {
        return nil, nil, err
    }
    unlock := s.locks.acquire(model.SeatKey(b.SeatLocation, b.SeatNumber))
    b, err = s.ownedBooking(ctx, userID, bookingID)
    if err != nil {
        unlock()
        return nil, nil, err
    }
    return b, unlock, nil
}

// memberKey names the per-member mutex used by the single-active
// policy.  The prefix keeps it out of the seat key namespace.
func memberKey(userID uint64) string {
    return "member:" + strconv.FormatUint(userID, 10)
}

// publish emits a lifecycle event, logging and swallowing broker
// failures so the request flow is never interrupted.
func (s *BookingService) publish(ctx context.Context, kind string, b *model.Booking, reason string) {
    ev := queue.BookingEvent{
        Kind:         kind,
        Reference:    b.Reference,
        BookingID:    b.ID,
        UserID:       b.UserID,
        UserEmail:    b.UserEmail,
        SeatLocation: b.SeatLocation,
        SeatNumber:   b.SeatNumber,
        StartsAt:     b.StartsAt.UTC().Format(time.RFC3339),
        EndsAt:       b.EndsAt.UTC().Format(time.RFC3339),
        Reason:       reason,
        OccurredAt:   s.now().Format(time.RFC3339),
    }
    if err := s.events.Publish(ctx, ev); err != nil {
        log.Printf("booking-service: publish %s for booking %d failed: %v", kind, b.ID, err)
    }
}

// admissionError maps an admission rejection to the error taxonomy.
func admissionError(a schedule.Admission) error {
    switch a.Code {
    case schedule.RejectInvalidWindow, schedule.RejectStartInPast, schedule.RejectTooShort:
        return &ValidationError{Msg: a.Message}
    default:
        return &ConflictError{Msg: a.Message}
    }
}

// breakError maps a break rejection to the error taxonomy.
func breakError(b schedule.BreakCheck) error {
    switch b.Code {
    case schedule.BreakRejectSiblingOverlap, schedule.BreakRejectSeatOverlap:
        return &ConflictError{Msg: b.Message}
    default:
        return &ValidationError{Msg: b.Message}
    }
}

// validateQueryWindow checks an availability query.  A zero end means
// the open future and is always acceptable.
func validateQueryWindow(start, end time.Time) error {
    if start.IsZero() {
        return validationf("query start is required")
    }
    if !end.IsZero() && !start.Before(end) {
        return validationf("query start must be before query end")
    }
    return nil
}
