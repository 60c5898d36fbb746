package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/config"
	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/utils"
)

const secret = "router-secret"

type stubReserver struct{ reserved, released int }

func (s *stubReserver) ReserveSeat(ctx context.Context, seatID, userID uint64) (*model.Reservation, error) {
	s.reserved++
	return &model.Reservation{ID: 1, UserID: userID, SeatID: seatID, EventID: 1}, nil
}

func (s *stubReserver) ReleaseSeat(ctx context.Context, seatID uint64) (bool, error) {
	s.released++
	return true, nil
}

type stubSeats struct{ calls int }

func (s *stubSeats) ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	s.calls++
	return []model.Seat{{ID: 1, EventID: eventID, SeatNumber: "Seat-1"}}, nil
}

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }

func token(t *testing.T, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, utils.Identity{UserID: 7, Role: role, Email: "u@example.com"}, 5)
	require.NoError(t, err)
	return at.Token
}

func newServer(svc *stubReserver) *echo.Echo {
	e := echo.New()
	RegisterSeats(e, handler.NewSeatHandler(&stubSeats{}, svc, nil), handler.NewReservationHandler(nil), secret, noop)
	return e
}

func do(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSeatRoutes(t *testing.T) {
	svc := &stubReserver{}
	e := newServer(svc)

	rec := do(e, http.MethodGet, "/api/seats/3", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var seats []model.Seat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seats))
	assert.Equal(t, uint64(3), seats[0].EventID)

	rec = do(e, http.MethodPost, "/api/seats/reserve", `{"seatId":1}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(e, http.MethodPost, "/api/seats/reserve", `{"seatId":1}`, "garbage")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, svc.reserved)

	rec = do(e, http.MethodPost, "/api/seats/reserve", `{"seatId":1}`, token(t, model.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.reserved)
}

func TestReleaseRequiresAdmin(t *testing.T) {
	svc := &stubReserver{}
	e := newServer(svc)

	rec := do(e, http.MethodPost, "/api/seats/1/release", "", token(t, model.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, svc.released)

	rec = do(e, http.MethodPost, "/api/seats/1/release", "", token(t, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.released)
}

func TestHealthz(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, nil)
	rec := do(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSeatListingIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20}

	e := echo.New()
	cache := middleware.NewRedisCache(cfg, rdb)
	RegisterEvents(e, handler.NewEventHandler(nil, nil), secret, cache)
	seats := &stubSeats{}
	RegisterSeats(e, handler.NewSeatHandler(seats, &stubReserver{}, nil), handler.NewReservationHandler(nil), secret, noop)

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodGet, "/api/seats/3", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, seats.calls)
	assert.Empty(t, mr.Keys())
}
