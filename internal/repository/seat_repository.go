package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// SeatRepo provides data access for seats and their booking entries.
// All timestamp columns are stored in UTC.  The entry list loaded by
// the Get* methods is the authoritative input for the availability and
// conflict computations; it is written only by BookingRepo inside the
// same transaction that writes the booking row.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// DB exposes the underlying handle for transaction orchestration.
func (r *SeatRepo) DB() *sql.DB { return r.db }

// Create inserts a single seat.  On success the seat's ID is
// populated.  A duplicate (location, seat_number) pair yields
// ErrSeatExists.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
    const q = `INSERT INTO seats (location, seat_number) VALUES (?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.Location, s.SeatNumber)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrSeatExists
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}

// GetByKey loads a seat by its (location, seat number) identity along
// with all of its booking entries ordered by start instant.  Returns
// ErrSeatNotFound when no such seat exists.
func (r *SeatRepo) GetByKey(ctx context.Context, location string, number uint32) (*model.Seat, error) {
    const q = `SELECT id, location, seat_number, created_at, updated_at
               FROM seats WHERE location = ? AND seat_number = ?`
    var s model.Seat
    err := r.db.QueryRowContext(ctx, q, location, number).Scan(
        &s.ID, &s.Location, &s.SeatNumber, &s.CreatedAt, &s.UpdatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrSeatNotFound
        }
        return nil, err
    }
    entries, err := r.entriesForSeats(ctx, []uint64{s.ID})
    if err != nil {
        return nil, err
    }
    s.Entries = entries[s.ID]
    return &s, nil
}

// GetByID loads a seat by primary key with its entries.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
    const q = `SELECT id, location, seat_number, created_at, updated_at FROM seats WHERE id = ?`
    var s model.Seat
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.Location, &s.SeatNumber, &s.CreatedAt, &s.UpdatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrSeatNotFound
        }
        return nil, err
    }
    entries, err := r.entriesForSeats(ctx, []uint64{s.ID})
    if err != nil {
        return nil, err
    }
    s.Entries = entries[s.ID]
    return &s, nil
}

// ListByLocation returns all seats of one location ordered by seat
// number, each with its entries populated.  An unknown location yields
// an empty slice, not an error.
func (r *SeatRepo) ListByLocation(ctx context.Context, location string) ([]model.Seat, error) {
    const q = `SELECT id, location, seat_number, created_at, updated_at
               FROM seats WHERE location = ? ORDER BY seat_number`
    rows, err := r.db.QueryContext(ctx, q, location)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    seats := make([]model.Seat, 0)
    ids := make([]uint64, 0)
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.Location, &s.SeatNumber, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        seats = append(seats, s)
        ids = append(ids, s.ID)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(seats) == 0 {
        return seats, nil
    }
    entries, err := r.entriesForSeats(ctx, ids)
    if err != nil {
        return nil, err
    }
    for i := range seats {
        seats[i].Entries = entries[seats[i].ID]
    }
    return seats, nil
}

// entriesForSeats loads the booking entries for a set of seats in one
// query and groups them by seat id, ordered by start instant.
func (r *SeatRepo) entriesForSeats(ctx context.Context, seatIDs []uint64) (map[uint64][]model.SeatEntry, error) {
    placeholders := make([]string, len(seatIDs))
    args := make([]interface{}, len(seatIDs))
    for i, id := range seatIDs {
        placeholders[i] = "?"
        args[i] = id
    }
    query := `SELECT id, seat_id, booking_id, user_id, user_name, user_email,
                     starts_at, ends_at, status, booked_at
              FROM seat_entries
              WHERE seat_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY seat_id, starts_at`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := make(map[uint64][]model.SeatEntry, len(seatIDs))
    for rows.Next() {
        var e model.SeatEntry
        var status string
        if err := rows.Scan(&e.ID, &e.SeatID, &e.BookingID, &e.UserID, &e.UserName, &e.UserEmail,
            &e.StartsAt, &e.EndsAt, &status, &e.BookedAt); err != nil {
            return nil, err
        }
        e.Status = model.EntryStatus(status)
        out[e.SeatID] = append(out[e.SeatID], e)
    }
    return out, rows.Err()
}
