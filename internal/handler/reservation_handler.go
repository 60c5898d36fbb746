package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/repository"
)

type ReservationLister interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
}

type ReservationHandler struct {
	Reservations ReservationLister
}

func NewReservationHandler(r ReservationLister) *ReservationHandler {
	return &ReservationHandler{Reservations: r}
}

// ListMine handles GET /api/reservations for the authenticated user.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorBody("unauthorized"))
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		c.Logger().Errorf("list reservations of user %d: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, errorBody("Server error"))
	}
	return c.JSON(http.StatusOK, list)
}
