package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/handler"
	"github.com/iliyamo/cinema-booking-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check, the Prometheus metrics endpoint
// and the static media tree where uploaded movie posters are served from.
func RegisterRoutes(e *echo.Echo, mediaRoot string) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", middleware.MetricsHandler())
	// Uploaded posters are stored under mediaRoot and exposed at /media/.
	e.Static("/media", mediaRoot)
}

// RegisterAuth registers all authentication-related routes.  Unauthenticated
// operations live under /v1/auth, while /v1/me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)
	// Logout takes a refresh token in the body and invalidates it; no JWT
	// is required so expired sessions can still be terminated.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.Auth(jwtSecret))
	auth.GET("/me", a.Me)
	// Logout-all revokes every refresh token of the caller, so unlike plain
	// logout it needs a valid access token to identify them.
	auth.POST("/auth/logout-all", a.LogoutAll)
}
