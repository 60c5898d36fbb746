//go:build integration

package repository

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/config"
	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/model"
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

func cleanTables(t *testing.T) {
	t.Helper()
	for _, tbl := range []string{"reservations", "seats", "events", "refresh_tokens", "users"} {
		_, err := testDB.Exec("DELETE FROM " + tbl)
		require.NoError(t, err)
	}
}

func createEvent(t *testing.T, seats int) *model.Event {
	t.Helper()
	e := &model.Event{Name: "Jazz Night", Date: time.Now().Add(48 * time.Hour), Location: "Berlin", Price: 25, TotalSeats: seats, Category: "music"}
	require.NoError(t, NewEventRepo(testDB, testDialect).CreateWithSeats(context.Background(), e))
	return e
}

func TestCreateWithSeatsLabelsSeats(t *testing.T) {
	cleanTables(t)
	e := createEvent(t, 5)

	seats, err := NewSeatRepo(testDB, testDialect).ListByEvent(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, seats, 5)
	assert.Equal(t, "Seat-1", seats[0].SeatNumber)
	assert.Equal(t, "Seat-5", seats[4].SeatNumber)
	for _, s := range seats {
		assert.Nil(t, s.ReservedBy)
	}
}

func TestSearchByDate(t *testing.T) {
	cleanTables(t)
	e := createEvent(t, 0)

	events, err := NewEventRepo(testDB, testDialect).Search(context.Background(), model.EventFilter{Date: e.Date.UTC().Format("2006-01-02"), Location: "berl"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, e.ID, events[0].ID)
}
