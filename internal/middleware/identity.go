package middleware

// identity.go defines helper functions shared across middleware files.
// It provides a userID extraction function that reads the subject claim
// JWTAuth stored in the Echo context.  When no user is authenticated,
// "guest" is returned.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the context.  Numeric JWT
// claims decode as float64; tokens issued by other tooling may carry
// strings.
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    }
    return "guest"
}
