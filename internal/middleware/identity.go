package middleware

// identity.go provides the user identity string shared by the rate-limit
// and cache key builders.  Guests all share the "guest" identity; rate
// limiting then falls back to the client IP for differentiation.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's ID as a string, or
// "guest" when the request is anonymous.
func currentUserID(c echo.Context) string {
	if caller := CallerFrom(c); caller != nil {
		return strconv.FormatUint(caller.UserID, 10)
	}
	return "guest"
}
