package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// BookingRepo provides data access for bookings, their breaks and the
// seat entries they project onto the seat's schedule.  Every write
// that touches both the bookings table and the seat_entries table runs
// inside one transaction so that the two can never diverge: a failure
// after the seat entry insert rolls the entry back together with the
// booking row.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `b.id, b.reference, b.user_id, b.user_name, b.user_email,
       b.seat_id, s.location, s.seat_number, b.starts_at, b.ends_at, b.status,
       b.attendance_confirmed, b.attendance_confirmed_at, b.cancellation_reason,
       b.deadline_task_id, b.created_at, b.updated_at`

// Create inserts the booking row and its active seat entry in a single
// transaction.  On success the booking's ID is populated.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking, entry *model.SeatEntry) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const insBooking = `INSERT INTO bookings
        (reference, user_id, user_name, user_email, seat_id, starts_at, ends_at, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, insBooking,
        b.Reference, b.UserID, b.UserName, b.UserEmail, b.SeatID,
        b.StartsAt, b.EndsAt, string(b.Status))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    entry.BookingID = b.ID

    const insEntry = `INSERT INTO seat_entries
        (seat_id, booking_id, user_id, user_name, user_email, starts_at, ends_at, status, booked_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err = tx.ExecContext(ctx, insEntry,
        entry.SeatID, entry.BookingID, entry.UserID, entry.UserName, entry.UserEmail,
        entry.StartsAt, entry.EndsAt, string(entry.Status), entry.BookedAt)
    if err != nil {
        return err
    }
    entryID, err := res.LastInsertId()
    if err != nil {
        return err
    }
    entry.ID = uint64(entryID)

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByID loads a booking with its breaks and the seat's identity.
// Returns ErrBookingNotFound when the id does not resolve.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    q := `SELECT ` + bookingColumns + `
          FROM bookings b JOIN seats s ON s.id = b.seat_id
          WHERE b.id = ?`
    b, err := r.scanOne(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        return nil, err
    }
    if err := r.loadBreaks(ctx, b); err != nil {
        return nil, err
    }
    return b, nil
}

// ActiveForUser returns the user's booking that is still pending or
// confirmed and has not yet ended, or nil when there is none.  This
// backs the at-most-one-active-booking policy.
func (r *BookingRepo) ActiveForUser(ctx context.Context, userID uint64, now time.Time) (*model.Booking, error) {
    q := `SELECT ` + bookingColumns + `
          FROM bookings b JOIN seats s ON s.id = b.seat_id
          WHERE b.user_id = ? AND b.status IN ('pending','confirmed') AND b.ends_at > ?
          ORDER BY b.starts_at LIMIT 1`
    b, err := r.scanOne(r.db.QueryRowContext(ctx, q, userID, now))
    if err == ErrBookingNotFound {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadBreaks(ctx, b); err != nil {
        return nil, err
    }
    return b, nil
}

// AddBreak records the break and mirrors it as an on-break seat entry
// in one transaction.  The booking's original active entry is left
// untouched.
func (r *BookingRepo) AddBreak(ctx context.Context, bookingID uint64, br *model.Break, entry *model.SeatEntry) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx,
        `INSERT INTO booking_breaks (booking_id, starts_at, ends_at) VALUES (?, ?, ?)`,
        bookingID, br.StartsAt, br.EndsAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    br.ID = uint64(id)
    br.BookingID = bookingID

    if _, err := tx.ExecContext(ctx,
        `INSERT INTO seat_entries
         (seat_id, booking_id, user_id, user_name, user_email, starts_at, ends_at, status, booked_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        entry.SeatID, bookingID, entry.UserID, entry.UserName, entry.UserEmail,
        entry.StartsAt, entry.EndsAt, string(entry.Status), entry.BookedAt); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Cancel marks the booking cancelled and removes all of its seat
// entries (active and on-break) in one transaction.  It returns the
// number of entries released so the caller can detect drift between
// the two tables.
func (r *BookingRepo) Cancel(ctx context.Context, bookingID uint64, reason string, at time.Time) (int64, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if _, err := tx.ExecContext(ctx,
        `UPDATE bookings SET status = 'cancelled', cancellation_reason = ?, deadline_task_id = '', updated_at = ?
         WHERE id = ?`, reason, at, bookingID); err != nil {
        return 0, err
    }
    res, err := tx.ExecContext(ctx,
        `DELETE FROM seat_entries WHERE booking_id = ?`, bookingID)
    if err != nil {
        return 0, err
    }
    removed, err := res.RowsAffected()
    if err != nil {
        return 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return removed, nil
}

// ConfirmAttendance marks presence verified and transitions the
// booking to confirmed.  The pending deadline task id is cleared; the
// caller is responsible for deleting the task itself.
func (r *BookingRepo) ConfirmAttendance(ctx context.Context, bookingID uint64, at time.Time) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE bookings
         SET attendance_confirmed = 1, attendance_confirmed_at = ?, status = 'confirmed',
             deadline_task_id = '', updated_at = ?
         WHERE id = ?`, at, at, bookingID)
    return err
}

// SetDeadlineTask records the id of the scheduled auto-cancel task so
// that confirmation and cancellation can delete it.
func (r *BookingRepo) SetDeadlineTask(ctx context.Context, bookingID uint64, taskID string) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE bookings SET deadline_task_id = ? WHERE id = ?`, taskID, bookingID)
    return err
}

// ListByUser returns all bookings of a member, newest first, with
// breaks populated.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    q := `SELECT ` + bookingColumns + `
          FROM bookings b JOIN seats s ON s.id = b.seat_id
          WHERE b.user_id = ?
          ORDER BY b.starts_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := r.scanRow(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i := range out {
        if err := r.loadBreaks(ctx, &out[i]); err != nil {
            return nil, err
        }
    }
    return out, nil
}

// PendingUnconfirmed returns every booking that still awaits an
// attendance check: status pending, attendance not confirmed and the
// window not fully passed.  The auto-cancel recovery scan rebuilds its
// wake-ups from this set after a restart.
func (r *BookingRepo) PendingUnconfirmed(ctx context.Context) ([]model.Booking, error) {
    q := `SELECT ` + bookingColumns + `
          FROM bookings b JOIN seats s ON s.id = b.seat_id
          WHERE b.status = 'pending' AND b.attendance_confirmed = 0
          ORDER BY b.starts_at`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := r.scanRow(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

type rowScanner interface {
    Scan(dest ...interface{}) error
}

func (r *BookingRepo) scanOne(row *sql.Row) (*model.Booking, error) {
    b, err := scanBooking(row)
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    return b, err
}

func (r *BookingRepo) scanRow(rows *sql.Rows) (*model.Booking, error) {
    return scanBooking(rows)
}

func scanBooking(sc rowScanner) (*model.Booking, error) {
    var b model.Booking
    var status string
    var confirmedAt sql.NullTime
    var reason sql.NullString
    var taskID sql.NullString
    err := sc.Scan(
        &b.ID, &b.Reference, &b.UserID, &b.UserName, &b.UserEmail,
        &b.SeatID, &b.SeatLocation, &b.SeatNumber, &b.StartsAt, &b.EndsAt, &status,
        &b.AttendanceConfirmed, &confirmedAt, &reason,
        &taskID, &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    b.Status = model.BookingStatus(status)
    if confirmedAt.Valid {
        t := confirmedAt.Time
        b.AttendanceConfirmedAt = &t
    }
    if reason.Valid {
        s := reason.String
        b.CancellationReason = &s
    }
    if taskID.Valid {
        b.DeadlineTaskID = taskID.String
    }
    return &b, nil
}

func (r *BookingRepo) loadBreaks(ctx context.Context, b *model.Booking) error {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, booking_id, starts_at, ends_at, created_at
         FROM booking_breaks WHERE booking_id = ? ORDER BY starts_at`, b.ID)
    if err != nil {
        return err
    }
    defer rows.Close()

    b.Breaks = b.Breaks[:0]
    for rows.Next() {
        var br model.Break
        if err := rows.Scan(&br.ID, &br.BookingID, &br.StartsAt, &br.EndsAt, &br.CreatedAt); err != nil {
            return err
        }
        b.Breaks = append(b.Breaks, br)
    }
    return rows.Err()
}
