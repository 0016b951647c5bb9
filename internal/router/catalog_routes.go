package router

// This file registers the catalog endpoints: genres, actors, movies, halls
// and sessions.  Every route runs behind OptionalAuth + Access, which is
// where the read-only-or-staff rule is applied: GET/HEAD/OPTIONS pass for
// anyone (guests included), while POST/PUT/DELETE require a staff token —
// anonymous writes get 401, authenticated non-staff writes get 403.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/handler"
	"github.com/iliyamo/cinema-booking-api/internal/middleware"
)

// CatalogHandlers bundles the per-resource handlers mounted by
// RegisterCatalog.
type CatalogHandlers struct {
	Genres   *handler.GenreHandler
	Actors   *handler.ActorHandler
	Movies   *handler.MovieHandler
	Halls    *handler.HallHandler
	Sessions *handler.SessionHandler
}

// RegisterCatalog registers catalog-scoped endpoints under /v1.  Extra
// middleware (the Redis response cache) is appended after the policy chain:
// catalog payloads are identical for every caller, so they are the only
// routes where a shared cache is safe, and a cache hit still passes token
// validation and the access rule first.
func RegisterCatalog(e *echo.Echo, h CatalogHandlers, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{
		middleware.OptionalAuth(jwtSecret),
		middleware.Access(),
	}, extra...)
	g := e.Group("/v1", mw...)

	// ---- Genres ----
	g.GET("/genres", h.Genres.List)
	g.POST("/genres", h.Genres.Create)
	g.GET("/genres/:id", h.Genres.Get)
	g.PUT("/genres/:id", h.Genres.Update)
	g.DELETE("/genres/:id", h.Genres.Delete)

	// ---- Actors ----
	g.GET("/actors", h.Actors.List)
	g.POST("/actors", h.Actors.Create)
	g.GET("/actors/:id", h.Actors.Get)
	g.PUT("/actors/:id", h.Actors.Update)
	g.DELETE("/actors/:id", h.Actors.Delete)

	// ---- Movies ----
	g.GET("/movies", h.Movies.List) // filters: title, genres, actors
	g.POST("/movies", h.Movies.Create)
	g.GET("/movies/:id", h.Movies.Get)
	g.PUT("/movies/:id", h.Movies.Update)
	g.DELETE("/movies/:id", h.Movies.Delete)
	// Poster upload is a POST, so the same policy chain makes it staff-only.
	g.POST("/movies/:id/image", h.Movies.UploadImage)

	// ---- Cinema halls ----
	g.GET("/halls", h.Halls.List)
	g.POST("/halls", h.Halls.Create)
	g.GET("/halls/:id", h.Halls.Get)
	g.PUT("/halls/:id", h.Halls.Update)
	g.DELETE("/halls/:id", h.Halls.Delete)

	// ---- Movie sessions ----
	g.GET("/sessions", h.Sessions.List) // filters: date, movie
	g.POST("/sessions", h.Sessions.Create)
	g.GET("/sessions/:id", h.Sessions.Get)
	g.PUT("/sessions/:id", h.Sessions.Update)
	g.DELETE("/sessions/:id", h.Sessions.Delete)
}
