package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

// RegisterSeats registers seat listing and reservation.  Seat listings
// bypass the response cache: a list read just before a reservation
// commits could otherwise be stored after the invalidation ran.  limit
// runs after JWTAuth so the rate key can include the caller.
func RegisterSeats(e *echo.Echo, h *handler.SeatHandler, r *handler.ReservationHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	auth := middleware.JWTAuth(jwtSecret)

	e.GET("/api/seats/:eventId", h.ListByEvent)
	e.POST("/api/seats/reserve", h.Reserve, auth, limit)
	e.POST("/api/seats/:seatId/release", h.Release, auth, middleware.RequireRole(model.RoleAdmin))
	e.GET("/api/reservations", r.ListMine, auth)
}
