package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-seat-reservation/internal/service"
)

// currentUserID pulls the authenticated user id that JWTAuth stored in
// the context.  JWT numeric claims decode as float64; tokens issued by
// other tooling may carry strings.
func currentUserID(c echo.Context) (uint64, bool) {
    switch v := c.Get("user_id").(type) {
    case float64:
        return uint64(v), true
    case string:
        id, err := strconv.ParseUint(v, 10, 64)
        return id, err == nil
    case uint64:
        return v, true
    default:
        return 0, false
    }
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    return strconv.ParseUint(c.Param(name), 10, 64)
}

// parseInstant parses an RFC3339 timestamp, returning the zero time for
// an empty input so optional bounds fall through naturally.
func parseInstant(s string) (time.Time, error) {
    if s == "" {
        return time.Time{}, nil
    }
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        return time.Time{}, err
    }
    return t.UTC(), nil
}

// writeServiceError maps the service error taxonomy onto HTTP status
// codes.  Unknown errors surface as 500 without leaking detail.
func writeServiceError(c echo.Context, err error) error {
    var (
        validation  *service.ValidationError
        conflict    *service.ConflictError
        authz       *service.AuthorizationError
        notFound    *service.NotFoundError
        presence    *service.PresenceError
        consistency *service.ConsistencyError
    )
    switch {
    case errors.As(err, &validation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Msg})
    case errors.As(err, &conflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Msg})
    case errors.As(err, &authz):
        return c.JSON(http.StatusForbidden, echo.Map{"error": authz.Msg})
    case errors.As(err, &notFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Msg})
    case errors.As(err, &presence):
        body := echo.Map{"error": presence.Msg}
        if !presence.NoLocation {
            body["distance_meters"] = presence.Distance
        }
        return c.JSON(http.StatusForbidden, body)
    case errors.As(err, &consistency):
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": consistency.Msg})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
