package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/policy"
)

// callerKey is the context key under which the resolved caller is stored.
const callerKey = "caller"

// Auth returns an Echo middleware that requires a valid Bearer access token.
// On success the resolved *policy.Caller is stored in the request context;
// requests without credentials or with invalid tokens are rejected with 401.
// Use this on routes that need an authenticated user (orders, /me).
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, present, err := resolveCaller(c, secret)
			if err != nil || !present {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// OptionalAuth resolves the caller when an Authorization header is present
// but lets anonymous requests through untouched.  A header that is present
// yet fails validation is still a 401: credentials were offered and did not
// authenticate.  Catalog routes use this in front of the access policy so
// safe methods stay open to guests.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, present, err := resolveCaller(c, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if present {
				c.Set(callerKey, caller)
			}
			return next(c)
		}
	}
}

// CallerFrom returns the authenticated caller stored by Auth/OptionalAuth,
// or nil when the request is anonymous.
func CallerFrom(c echo.Context) *policy.Caller {
	if v, ok := c.Get(callerKey).(*policy.Caller); ok {
		return v
	}
	return nil
}

// resolveCaller parses the Authorization header.  present reports whether a
// Bearer header was supplied at all; err is non-nil only when a supplied
// token failed to validate.
func resolveCaller(c echo.Context, secret string) (caller *policy.Caller, present bool, err error) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, false, nil
	}
	raw := strings.TrimPrefix(auth, "Bearer ")

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, true, echo.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, true, echo.ErrUnauthorized
	}

	caller = &policy.Caller{}
	if sub, ok := claims["sub"].(float64); ok {
		caller.UserID = uint64(sub)
	}
	if email, ok := claims["email"].(string); ok {
		caller.Email = email
	}
	if staff, ok := claims["staff"].(bool); ok {
		caller.Staff = staff
	}
	return caller, true, nil
}
