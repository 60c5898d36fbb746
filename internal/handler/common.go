package handler // handler defines http handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/middleware"
)

// dbTimeout bounds the plain read/write endpoints.  Seat reservation has
// its own deadline inside the service.
const dbTimeout = 5 * time.Second

// CacheInvalidator drops cached GET responses after a successful write.
type CacheInvalidator func(ctx context.Context) error

func (inv CacheInvalidator) run(c echo.Context) {
	if inv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), time.Second)
	defer cancel()
	if err := inv(ctx); err != nil {
		c.Logger().Warnf("cache invalidation failed: %v", err)
	}
}

// getUserID returns the caller set by the JWT middleware.
func getUserID(c echo.Context) (uint64, bool) {
	return middleware.UserID(c)
}

// paramID parses a positive integer path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	return n, err == nil && n > 0
}

func errorBody(msg string) echo.Map   { return echo.Map{"error": msg} }
func messageBody(msg string) echo.Map { return echo.Map{"message": msg} }
