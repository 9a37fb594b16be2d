package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserIDKey is the echo.Context key under which JWTAuth stores the
// authenticated user's ID as a uint64.
const UserIDKey = "user_id"

// CurrentUserID returns the authenticated user's ID, if any.
func CurrentUserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(UserIDKey).(uint64)
    return id, ok && id != 0
}

// userKey renders the user for rate-limit and cache keys; "anon" when the
// request is not authenticated.
func userKey(c echo.Context) string {
    if id, ok := CurrentUserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
