package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/policy"
)

// Access enforces the catalog access rule: safe methods for everyone,
// writes for staff only.  It expects OptionalAuth (or Auth) to have run
// first so the caller, if any, is already in the context.
//
// The policy itself only answers allow/deny; the two denial outcomes are
// distinguished here.  An anonymous caller gets 401 so clients know to
// authenticate, an authenticated non-staff caller gets 403.
func Access() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerFrom(c)
			if policy.Permit(c.Request().Method, caller) {
				return next(c)
			}
			if caller == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}
