package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

func TestBuildEventFilterEmpty(t *testing.T) {
	cond, args, err := buildEventFilter(database.MySQL, model.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, "1=1", cond)
	assert.Empty(t, args)
}

func TestBuildEventFilterAllFields(t *testing.T) {
	f := model.EventFilter{Name: "jazz", Location: " Berlin ", Category: "music", Date: "2025-06-01"}

	cond, args, err := buildEventFilter(database.Postgres, f)
	require.NoError(t, err)
	assert.Equal(t, "name ILIKE ? AND location ILIKE ? AND category = ? AND DATE(date) = ?", cond)
	assert.Equal(t, []any{"%jazz%", "%Berlin%", "music", "2025-06-01"}, args)

	cond, _, err = buildEventFilter(database.MySQL, f)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cond, "LOWER(name) LIKE LOWER(?)"), cond)
}

func TestBuildEventFilterRejectsBadDate(t *testing.T) {
	for _, d := range []string{"01-06-2025", "2025/06/01", "2025-6-1", "tomorrow"} {
		_, _, err := buildEventFilter(database.MySQL, model.EventFilter{Date: d})
		assert.ErrorIs(t, err, ErrInvalidDate, d)
	}
}

func TestSeatBatch(t *testing.T) {
	q, args := seatBatch(7, 3)
	assert.Equal(t, "INSERT INTO seats (event_id, seat_number) VALUES (?, ?),(?, ?),(?, ?)", q)
	assert.Equal(t, []any{uint64(7), "Seat-1", uint64(7), "Seat-2", uint64(7), "Seat-3"}, args)
}
