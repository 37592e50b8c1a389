package middleware

// identity.go defines helper functions shared across middleware files.  It
// provides the identity extraction used for rate-limit bucketing: an
// authenticated user's numeric id, an authenticated admin's login name, or
// "anon" for plain visitors.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID extracts a request identity for key building.  Auth
// middleware stores a uint64 under "user_id" for users and a string under
// "admin_username" for admins; anything else is anonymous.
func currentUserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if id, ok := v.(uint64); ok && id != 0 {
            return strconv.FormatUint(id, 10)
        }
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    if v := c.Get("admin_username"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return "admin:" + s
        }
    }
    return "anon"
}
