package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

// Reserver is implemented by *service.ReservationService.
type Reserver interface {
	ReserveSeat(ctx context.Context, seatID, userID uint64) (*model.Reservation, error)
	ReleaseSeat(ctx context.Context, seatID uint64) (bool, error)
}

type SeatLister interface {
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error)
}

type SeatHandler struct {
	Seats      SeatLister
	Svc        Reserver
	Invalidate CacheInvalidator
}

func NewSeatHandler(seats SeatLister, svc Reserver, inv CacheInvalidator) *SeatHandler {
	return &SeatHandler{Seats: seats, Svc: svc, Invalidate: inv}
}

type reserveReq struct {
	SeatID uint64 `json:"seatId"`
}

// ListByEvent handles GET /api/seats/:eventId.  An unknown event has no
// seats and yields an empty list.
func (h *SeatHandler) ListByEvent(c echo.Context) error {
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid event id"))
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	seats, err := h.Seats.ListByEvent(ctx, eventID)
	if err != nil {
		c.Logger().Errorf("list seats of event %d: %v", eventID, err)
		return c.JSON(http.StatusInternalServerError, errorBody("Server error"))
	}
	return c.JSON(http.StatusOK, seats)
}

// Reserve handles POST /api/seats/reserve {"seatId": N}.
func (h *SeatHandler) Reserve(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, messageBody("authentication required"))
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil || req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, messageBody("seatId is required"))
	}

	rv, err := h.Svc.ReserveSeat(c.Request().Context(), req.SeatID, uid)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, messageBody("Seat not found"))
	case errors.Is(err, service.ErrSeatTaken):
		return c.JSON(http.StatusBadRequest, messageBody("Seat already reserved"))
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, messageBody("authentication required"))
	case errors.Is(err, service.ErrUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.Logger().Warnf("reserve seat %d for user %d: %v", req.SeatID, uid, err)
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, messageBody("Service temporarily unavailable, try again"))
	default:
		c.Logger().Errorf("reserve seat %d for user %d: %v", req.SeatID, uid, err)
		return c.JSON(http.StatusInternalServerError, messageBody("Server error"))
	}

	h.Invalidate.run(c)
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Seat reserved successfully",
		"reservation": rv,
	})
}

// Release handles POST /api/seats/:seatId/release (ADMIN only).
func (h *SeatHandler) Release(c echo.Context) error {
	seatID, ok := paramID(c, "seatId")
	if !ok {
		return c.JSON(http.StatusBadRequest, messageBody("invalid seat id"))
	}
	released, err := h.Svc.ReleaseSeat(c.Request().Context(), seatID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, messageBody("Seat not found"))
	case errors.Is(err, service.ErrUnavailable):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, messageBody("Service temporarily unavailable, try again"))
	default:
		c.Logger().Errorf("release seat %d: %v", seatID, err)
		return c.JSON(http.StatusInternalServerError, messageBody("Server error"))
	}

	if !released {
		return c.JSON(http.StatusOK, echo.Map{"message": "Seat was not reserved", "released": false})
	}
	h.Invalidate.run(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Seat released", "released": true})
}
