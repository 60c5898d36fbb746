package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// MaxSeatsPerEvent caps the batch insert done on event creation.
const MaxSeatsPerEvent = 10000

type EventStore interface {
	Search(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	CreateWithSeats(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id uint64) error
}

type EventHandler struct {
	Events     EventStore
	Invalidate CacheInvalidator
}

func NewEventHandler(events EventStore, inv CacheInvalidator) *EventHandler {
	return &EventHandler{Events: events, Invalidate: inv}
}

type eventReq struct {
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	Location   string  `json:"location"`
	Price      float64 `json:"price"`
	TotalSeats int     `json:"total_seats"`
	Category   string  `json:"category"`
}

// accepted date layouts, most specific first
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// toEvent validates the request; a non-empty string is the client error.
func (r eventReq) toEvent() (model.Event, string) {
	e := model.Event{
		Name:       strings.TrimSpace(r.Name),
		Location:   strings.TrimSpace(r.Location),
		Category:   strings.TrimSpace(r.Category),
		Price:      r.Price,
		TotalSeats: r.TotalSeats,
	}
	if e.Name == "" || e.Location == "" {
		return e, "name and location are required"
	}
	d, ok := parseEventDate(r.Date)
	if !ok {
		return e, "invalid date"
	}
	e.Date = d
	if r.Price < 0 || math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return e, "price must be a non-negative number"
	}
	if r.TotalSeats < 0 || r.TotalSeats > MaxSeatsPerEvent {
		return e, "total_seats out of range"
	}
	return e, ""
}

// List handles GET /api/events?name=&location=&category=&date=YYYY-MM-DD.
func (h *EventHandler) List(c echo.Context) error {
	f := model.EventFilter{
		Name:     c.QueryParam("name"),
		Location: c.QueryParam("location"),
		Category: c.QueryParam("category"),
		Date:     c.QueryParam("date"),
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	events, err := h.Events.Search(ctx, f)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidDate) {
			return c.JSON(http.StatusBadRequest, errorBody("Invalid date format. Use YYYY-MM-DD"))
		}
		c.Logger().Errorf("search events: %v", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Server error"))
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /api/events/:eventId.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid event id"))
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// Create handles POST /api/events.  The event and its seats are stored
// atomically.
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid body"))
	}
	ev, msg := req.toEvent()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, errorBody(msg))
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Events.CreateWithSeats(ctx, &ev); err != nil {
		return h.fail(c, err)
	}
	h.Invalidate.run(c)
	return c.JSON(http.StatusCreated, ev)
}

// Update handles PUT /api/events/:eventId.  total_seats is ignored; the
// seat set is fixed when the event is created.
func (h *EventHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid event id"))
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid body"))
	}
	req.TotalSeats = 0
	ev, msg := req.toEvent()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, errorBody(msg))
	}
	ev.ID = id
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Events.Update(ctx, &ev); err != nil {
		return h.fail(c, err)
	}
	h.Invalidate.run(c)
	return c.JSON(http.StatusOK, ev)
}

// Delete handles DELETE /api/events/:eventId.
func (h *EventHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid event id"))
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		return h.fail(c, err)
	}
	h.Invalidate.run(c)
	return c.JSON(http.StatusOK, messageBody("Event deleted"))
}

func (h *EventHandler) fail(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrEventNotFound) {
		return c.JSON(http.StatusNotFound, messageBody("Event not found"))
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, errorBody("Server error"))
}
