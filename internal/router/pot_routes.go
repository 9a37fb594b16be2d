package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spot-reservation/internal/handler"
	"github.com/iliyamo/spot-reservation/internal/middleware"
)

// RegisterPots registers the savings-pot routes behind JWT authentication.
func RegisterPots(e *echo.Echo, h *handler.PotHandler, jwtSecret string) {
	g := e.Group("/v1/pots", middleware.JWTAuth(jwtSecret))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
}
