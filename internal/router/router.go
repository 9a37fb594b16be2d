package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/spot-reservation/internal/handler"
	"github.com/iliyamo/spot-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication:
// liveness, readiness and the Prometheus scrape endpoint served from
// gatherer.
func RegisterRoutes(e *echo.Echo, gatherer prometheus.Gatherer, deps ...handler.Pinger) {
	// Load balancers and monitoring probe these.
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(deps...))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterAuth registers signup and login under /v1/auth and the current
// user endpoint under the protected /v1 group.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)

	auth := e.Group("/v1/users")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
