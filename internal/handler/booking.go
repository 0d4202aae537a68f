package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// BookingHandler serves the member booking workflows: creating
// bookings, carving breaks, confirming attendance, cancelling and
// reporting location samples.
type BookingHandler struct {
    Svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
    return &BookingHandler{Svc: svc}
}

// ----- DTOs -----

type createBookingReq struct {
    Location   string `json:"location"`
    SeatNumber uint32 `json:"seat_number"`
    StartsAt   string `json:"starts_at"` // RFC3339
    EndsAt     string `json:"ends_at"`   // RFC3339
}

type breakReq struct {
    StartsAt string `json:"starts_at"`
    EndsAt   string `json:"ends_at"`
}

type locationReq struct {
    Latitude  float64 `json:"latitude"`
    Longitude float64 `json:"longitude"`
}

type breakPart struct {
    ID       uint64    `json:"id"`
    StartsAt time.Time `json:"starts_at"`
    EndsAt   time.Time `json:"ends_at"`
}

type bookingPart struct {
    ID                    uint64      `json:"id"`
    Reference             string      `json:"reference"`
    SeatLocation          string      `json:"seat_location"`
    SeatNumber            uint32      `json:"seat_number"`
    StartsAt              time.Time   `json:"starts_at"`
    EndsAt                time.Time   `json:"ends_at"`
    Status                string      `json:"status"`
    OnBreak               bool        `json:"on_break"`
    AttendanceConfirmed   bool        `json:"attendance_confirmed"`
    AttendanceConfirmedAt *time.Time  `json:"attendance_confirmed_at,omitempty"`
    CancellationReason    *string     `json:"cancellation_reason,omitempty"`
    Breaks                []breakPart `json:"breaks"`
}

// bookingToPart renders a booking with its status derived at the given
// instant: windows that fully passed read as completed, and the
// on_break flag reflects whether a break covers the instant.
func bookingToPart(b *model.Booking, now time.Time) bookingPart {
    breaks := make([]breakPart, 0, len(b.Breaks))
    for _, br := range b.Breaks {
        breaks = append(breaks, breakPart{ID: br.ID, StartsAt: br.StartsAt, EndsAt: br.EndsAt})
    }
    return bookingPart{
        ID:                    b.ID,
        Reference:             b.Reference,
        SeatLocation:          b.SeatLocation,
        SeatNumber:            b.SeatNumber,
        StartsAt:              b.StartsAt,
        EndsAt:                b.EndsAt,
        Status:                string(b.EffectiveStatus(now)),
        OnBreak:               b.OnBreakAt(now),
        AttendanceConfirmed:   b.AttendanceConfirmed,
        AttendanceConfirmedAt: b.AttendanceConfirmedAt,
        CancellationReason:    b.CancellationReason,
        Breaks:                breaks,
    }
}

// Create books a seat for the authenticated member.
func (h *BookingHandler) Create(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    startsAt, err := parseInstant(req.StartsAt)
    if err != nil || startsAt.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be an RFC3339 timestamp"})
    }
    endsAt, err := parseInstant(req.EndsAt)
    if err != nil || endsAt.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be an RFC3339 timestamp"})
    }

    b, err := h.Svc.Create(c.Request().Context(), uid, req.Location, req.SeatNumber, startsAt, endsAt)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, bookingToPart(b, h.Svc.Now()))
}

// AddBreak carves a break out of the member's booking.
func (h *BookingHandler) AddBreak(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req breakReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    startsAt, err := parseInstant(req.StartsAt)
    if err != nil || startsAt.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be an RFC3339 timestamp"})
    }
    endsAt, err := parseInstant(req.EndsAt)
    if err != nil || endsAt.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be an RFC3339 timestamp"})
    }

    br, err := h.Svc.AddBreak(c.Request().Context(), uid, id, startsAt, endsAt)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, breakPart{ID: br.ID, StartsAt: br.StartsAt, EndsAt: br.EndsAt})
}

type attendanceReq struct {
    Latitude  *float64 `json:"latitude"`
    Longitude *float64 `json:"longitude"`
}

// ConfirmAttendance verifies presence at the seat within the geofence.
// Coordinates in the body are optional; when present they are recorded
// as the member's latest position before the check runs.
func (h *BookingHandler) ConfirmAttendance(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req attendanceReq
    if err := c.Bind(&req); err == nil && req.Latitude != nil && req.Longitude != nil {
        if err := h.Svc.ReportLocation(c.Request().Context(), uid, *req.Latitude, *req.Longitude); err != nil {
            return writeServiceError(c, err)
        }
    }

    b, err := h.Svc.ConfirmAttendance(c.Request().Context(), uid, id)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, bookingToPart(b, h.Svc.Now()))
}

// Cancel withdraws a booking.  Cancelling twice is a no-op.
func (h *BookingHandler) Cancel(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }

    if err := h.Svc.Cancel(c.Request().Context(), uid, id, c.QueryParam("reason")); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}

// List returns the member's bookings, newest first.
func (h *BookingHandler) List(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    bookings, err := h.Svc.MyBookings(c.Request().Context(), uid)
    if err != nil {
        return writeServiceError(c, err)
    }
    now := h.Svc.Now()
    out := make([]bookingPart, 0, len(bookings))
    for i := range bookings {
        out = append(out, bookingToPart(&bookings[i], now))
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Get returns one booking owned by the member.
func (h *BookingHandler) Get(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }

    b, err := h.Svc.GetBooking(c.Request().Context(), uid, id)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, bookingToPart(b, h.Svc.Now()))
}

// ReportLocation stores the member's latest position sample for
// attendance checks.
func (h *BookingHandler) ReportLocation(c echo.Context) error {
    uid, ok := currentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req locationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    if err := h.Svc.ReportLocation(c.Request().Context(), uid, req.Latitude, req.Longitude); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "location recorded"})
}
