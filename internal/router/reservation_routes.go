package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spot-reservation/internal/handler"
	"github.com/iliyamo/spot-reservation/internal/middleware"
)

// RegisterReservations registers the reservation and availability routes.
// Every route requires a valid access token; booking additionally passes
// through rateLimit and availability through cache.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, rateLimit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/reservations", h.Create, rateLimit)
	g.GET("/reservations", h.List)
	g.GET("/reservations/:id", h.Get)

	// Cached per user and query; entries expire after CACHE_TTL, so a new
	// booking may take that long to show up here.
	g.GET("/availability", h.Availability, cache)
}
