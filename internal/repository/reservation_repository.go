package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/database"
)

// ReservationDetail is a reservation joined with what a user needs to
// recognise it.
type ReservationDetail struct {
	ID         uint64    `json:"id"`
	EventID    uint64    `json:"event_id"`
	EventName  string    `json:"event_name"`
	EventDate  time.Time `json:"event_date"`
	Location   string    `json:"location"`
	SeatID     uint64    `json:"seat_id"`
	SeatNumber string    `json:"seat_number"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReservationRepo struct {
	db *sql.DB
	d  database.Dialect
}

func NewReservationRepo(db *sql.DB, d database.Dialect) *ReservationRepo {
	return &ReservationRepo{db: db, d: d}
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.event_id, e.name, e.date, e.location, r.seat_id, s.seat_number, r.created_at
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		JOIN seats  s ON s.id = r.seat_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ReservationDetail{}
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(&d.ID, &d.EventID, &d.EventName, &d.EventDate, &d.Location, &d.SeatID, &d.SeatNumber, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
