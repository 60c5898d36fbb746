//go:build integration

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/config"
	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

var (
	testDB      *sql.DB
	testDialect database.Dialect
)

func TestMain(m *testing.M) {
	cfg := config.Config{
		DBDriver:     getEnv("TEST_DB_DRIVER", "mysql"),
		DBUser:       getEnv("TEST_DB_USER", "root"),
		DBPass:       getEnv("TEST_DB_PASS", "root"),
		DBHost:       getEnv("TEST_DB_HOST", "localhost"),
		DBPort:       getEnv("TEST_DB_PORT", "3306"),
		DBName:       getEnv("TEST_DB_NAME", "booking_test"),
		LockWaitSec:  2,
		StoreTimeout: 5 * time.Second,
	}
	var err error
	testDB, testDialect, err = database.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}
	if err := database.Migrate(context.Background(), testDB, testDialect); err != nil {
		log.Fatalf("failed to migrate test database: %v", err)
	}
	code := m.Run()
	_ = testDB.Close()
	os.Exit(code)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func resetDB(t *testing.T) {
	t.Helper()
	for _, tbl := range []string{"reservations", "seats", "events", "refresh_tokens", "users"} {
		_, err := testDB.Exec("DELETE FROM " + tbl)
		require.NoError(t, err)
	}
}

func seedUsers(t *testing.T, n int) []uint64 {
	t.Helper()
	users := repository.NewUserRepo(testDB, testDialect)
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		id, err := users.Create(context.Background(), fmt.Sprintf("user-%03d@example.com", i), "secret123", model.RoleUser, 4)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func seedSeats(t *testing.T, n int) []model.Seat {
	t.Helper()
	e := &model.Event{Name: "Jazz Night", Date: time.Now().Add(48 * time.Hour), Location: "Berlin", Price: 25, TotalSeats: n, Category: "music"}
	require.NoError(t, repository.NewEventRepo(testDB, testDialect).CreateWithSeats(context.Background(), e))
	seats, err := repository.NewSeatRepo(testDB, testDialect).ListByEvent(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, seats, n)
	return seats
}

func reservationsFor(t *testing.T, seatID uint64) int {
	t.Helper()
	var n int
	require.NoError(t, testDB.QueryRow(testDialect.Rebind("SELECT COUNT(*) FROM reservations WHERE seat_id = ?"), seatID).Scan(&n))
	return n
}

// Test: 50 users race for the same seat -> exactly one owner, one reservation,
// every loser told the seat is taken.
func TestReserveSeat_DB_ConcurrentSingleWinner(t *testing.T) {
	resetDB(t)
	users := seedUsers(t, 50)
	seat := seedSeats(t, 1)[0]
	repo := repository.NewSeatRepo(testDB, testDialect)
	svc := NewReservationService(repo, nil, 5*time.Second)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uint64
		losers  []error
	)
	wg.Add(len(users))
	for _, uid := range users {
		go func(uid uint64) {
			defer wg.Done()
			_, err := svc.ReserveSeat(context.Background(), seat.ID, uid)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, uid)
			} else {
				losers = append(losers, err)
			}
		}(uid)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	for _, err := range losers {
		assert.ErrorIs(t, err, ErrSeatTaken)
	}
	got, err := repo.GetSeat(context.Background(), seat.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReservedBy)
	assert.Equal(t, winners[0], *got.ReservedBy)
	assert.Equal(t, 1, reservationsFor(t, seat.ID))
}

func TestReserveSeat_DB_DifferentSeatsAllSucceed(t *testing.T) {
	resetDB(t)
	users := seedUsers(t, 20)
	seats := seedSeats(t, 20)
	svc := NewReservationService(repository.NewSeatRepo(testDB, testDialect), nil, 5*time.Second)

	var wg sync.WaitGroup
	errs := make([]error, len(seats))
	for i := range seats {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ReserveSeat(context.Background(), seats[i].ID, users[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "seat %d", seats[i].ID)
		assert.Equal(t, 1, reservationsFor(t, seats[i].ID))
	}
}

func TestReleaseSeat_DB_ClearsOwnerAndReservation(t *testing.T) {
	resetDB(t)
	users := seedUsers(t, 2)
	seat := seedSeats(t, 1)[0]
	repo := repository.NewSeatRepo(testDB, testDialect)
	svc := NewReservationService(repo, nil, 5*time.Second)

	_, err := svc.ReserveSeat(context.Background(), seat.ID, users[0])
	require.NoError(t, err)

	released, err := svc.ReleaseSeat(context.Background(), seat.ID)
	require.NoError(t, err)
	assert.True(t, released)

	got, err := repo.GetSeat(context.Background(), seat.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReservedBy)
	assert.Equal(t, 0, reservationsFor(t, seat.ID))

	released, err = svc.ReleaseSeat(context.Background(), seat.ID)
	require.NoError(t, err)
	assert.False(t, released)

	// free again: another user can take it
	_, err = svc.ReserveSeat(context.Background(), seat.ID, users[1])
	assert.NoError(t, err)
}
