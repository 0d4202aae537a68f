package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework for routing

    "github.com/iliyamo/library-seat-reservation/internal/handler"
    "github.com/iliyamo/library-seat-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth; the authenticated profile endpoint
// lives under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterSeats registers the seat browse and availability endpoints.
// Members and admins may query them; seat creation is admin only.
func RegisterSeats(e *echo.Echo, h *handler.SeatHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("MEMBER", "ADMIN"),
    )
    g.GET("/seats/:location", h.List)
    g.GET("/seats/:location/:number/availability", h.Availability)

    admin := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )
    admin.POST("/seats", h.Create)
}

// RegisterBookings registers the member booking workflows: create,
// break, attendance confirmation, cancellation, listing and the
// periodic location report.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("MEMBER", "ADMIN"),
    )
    g.POST("/bookings", h.Create)
    g.GET("/bookings", h.List)
    g.GET("/bookings/:id", h.Get)
    g.DELETE("/bookings/:id", h.Cancel)
    g.POST("/bookings/:id/break", h.AddBreak)
    g.POST("/bookings/:id/attendance", h.ConfirmAttendance)
    g.PUT("/location", h.ReportLocation)
}
