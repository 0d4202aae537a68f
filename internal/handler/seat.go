package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/model"
    "github.com/iliyamo/library-seat-reservation/internal/repository"
    "github.com/iliyamo/library-seat-reservation/internal/schedule"
    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// SeatHandler serves seat listing, availability queries and admin seat
// management.
type SeatHandler struct {
    Svc   *service.BookingService
    Seats *repository.SeatRepo
}

func NewSeatHandler(svc *service.BookingService, seats *repository.SeatRepo) *SeatHandler {
    return &SeatHandler{Svc: svc, Seats: seats}
}

// ----- DTOs -----

type slotPart struct {
    Start           time.Time  `json:"start"`
    End             *time.Time `json:"end,omitempty"` // nil for an unbounded slot
    DurationMinutes int        `json:"duration_minutes,omitempty"`
}

type seatPart struct {
    ID           uint64     `json:"id"`
    Location     string     `json:"location"`
    SeatNumber   uint32     `json:"seat_number"`
    Availability string     `json:"availability"`
    FreeSlots    []slotPart `json:"free_slots"`
}

func slotsToParts(slots []schedule.Slot) []slotPart {
    out := make([]slotPart, 0, len(slots))
    for _, s := range slots {
        p := slotPart{Start: s.Start}
        if !s.Unbounded() {
            end := s.End
            p.End = &end
            p.DurationMinutes = s.DurationMinutes()
        }
        out = append(out, p)
    }
    return out
}

func seatStatusToPart(st service.SeatStatus) seatPart {
    return seatPart{
        ID:           st.Seat.ID,
        Location:     st.Seat.Location,
        SeatNumber:   st.Seat.SeatNumber,
        Availability: string(st.Availability),
        FreeSlots:    slotsToParts(st.Slots),
    }
}

// queryWindow reads the from/to query params.  A missing "from"
// defaults to now; a missing "to" leaves the window unbounded.
func (h *SeatHandler) queryWindow(c echo.Context) (time.Time, time.Time, error) {
    from, err := parseInstant(c.QueryParam("from"))
    if err != nil {
        return time.Time{}, time.Time{}, err
    }
    to, err := parseInstant(c.QueryParam("to"))
    if err != nil {
        return time.Time{}, time.Time{}, err
    }
    if from.IsZero() {
        from = h.Svc.Now()
    }
    return from, to, nil
}

// List returns every seat of a location with availability over the
// query window.
func (h *SeatHandler) List(c echo.Context) error {
    from, to, err := h.queryWindow(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "from/to must be RFC3339 timestamps"})
    }

    statuses, err := h.Svc.ListSeats(c.Request().Context(), c.Param("location"), from, to)
    if err != nil {
        return writeServiceError(c, err)
    }
    out := make([]seatPart, 0, len(statuses))
    for _, st := range statuses {
        out = append(out, seatStatusToPart(st))
    }
    return c.JSON(http.StatusOK, echo.Map{"seats": out})
}

// Availability returns the free slots of one seat over the query
// window.
func (h *SeatHandler) Availability(c echo.Context) error {
    number, err := strconv.ParseUint(c.Param("number"), 10, 32)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat number must be numeric"})
    }
    from, to, err := h.queryWindow(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "from/to must be RFC3339 timestamps"})
    }

    st, err := h.Svc.Availability(c.Request().Context(), c.Param("location"), uint32(number), from, to)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, seatStatusToPart(*st))
}

// ----- Admin -----

type createSeatReq struct {
    Location   string `json:"location"`
    SeatNumber uint32 `json:"seat_number"`
}

// Create registers a new seat (admin only).
func (h *SeatHandler) Create(c echo.Context) error {
    var req createSeatReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Location == "" || req.SeatNumber == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "location and seat_number required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    seat := &model.Seat{Location: req.Location, SeatNumber: req.SeatNumber}
    if err := h.Seats.Create(ctx, seat); err != nil {
        if err == repository.ErrSeatExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "seat already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create seat failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":          seat.ID,
        "location":    seat.Location,
        "seat_number": seat.SeatNumber,
    })
}
