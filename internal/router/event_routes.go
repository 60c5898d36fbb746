package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
)

// RegisterEvents registers event browsing and management.  Reads go
// through the response cache; writes need a valid JWT and invalidate the
// cache from the handler.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api/events")
	g.GET("", h.List, cache)
	g.GET("/:eventId", h.Get, cache)

	w := g.Group("", middleware.JWTAuth(jwtSecret))
	w.POST("", h.Create)
	w.PUT("/:eventId", h.Update)
	w.DELETE("/:eventId", h.Delete)
}

// RegisterWeather exposes the weather proxy.  The cache passed in is
// expected to carry a longer TTL than the event cache.
func RegisterWeather(e *echo.Echo, h *handler.WeatherHandler, cache echo.MiddlewareFunc) {
	e.GET("/api/weather/:location", h.Current, cache)
}
