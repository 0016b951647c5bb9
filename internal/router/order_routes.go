package router

// This file registers the booking endpoints.  Orders are placed by regular
// customers, so they sit behind strict JWT auth rather than the staff
// policy: any authenticated user may create and list their own orders.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/handler"
	"github.com/iliyamo/cinema-booking-api/internal/middleware"
)

// RegisterOrders registers order endpoints under /v1.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.Auth(jwtSecret))
	g.POST("/orders", h.Create)
	g.GET("/orders", h.List)
	g.GET("/orders/:id", h.Get)
}
