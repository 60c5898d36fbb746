package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

// SeatTx groups the writes that must commit or roll back together when a
// seat is reserved.
type SeatTx interface {
	// ConditionalReserve sets the owner only if the seat is still free and
	// reports whether the row was updated.
	ConditionalReserve(ctx context.Context, seatID, userID uint64) (bool, error)
	CreateReservation(ctx context.Context, userID, eventID, seatID uint64) (*model.Reservation, error)
}

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
	d  database.Dialect
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB, d database.Dialect) *SeatRepo {
	return &SeatRepo{db: db, d: d}
}

// GetSeat returns ErrSeatNotFound when the id is unknown.
func (r *SeatRepo) GetSeat(ctx context.Context, id uint64) (*model.Seat, error) {
	var (
		s     model.Seat
		owner sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		r.d.Rebind(`SELECT id, event_id, seat_number, reserved_by FROM seats WHERE id = ?`), id).
		Scan(&s.ID, &s.EventID, &s.SeatNumber, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ReservedBy = ownerPtr(owner)
	return &s, nil
}

// ListByEvent returns the seats of an event in label order.  An unknown
// event yields an empty slice.
func (r *SeatRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		r.d.Rebind(`SELECT id, event_id, seat_number, reserved_by FROM seats WHERE event_id = ? ORDER BY id ASC`), eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := []model.Seat{}
	for rows.Next() {
		var (
			s     model.Seat
			owner sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.EventID, &s.SeatNumber, &owner); err != nil {
			return nil, err
		}
		s.ReservedBy = ownerPtr(owner)
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// WithTx runs fn inside a fresh transaction taken from the pool.  The
// transaction commits only if fn returns nil and is rolled back on every
// other path, including a panic in fn.
func (r *SeatRepo) WithTx(ctx context.Context, fn func(SeatTx) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&seatTx{tx: tx, d: r.d})
	})
}

func (r *SeatRepo) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Release clears the owner of a seat and deletes its reservation in one
// transaction.  It reports false when the seat was already free.
func (r *SeatRepo) Release(ctx context.Context, seatID uint64) (bool, error) {
	if _, err := r.GetSeat(ctx, seatID); err != nil {
		return false, err
	}
	released := false
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.d.Rebind(`DELETE FROM reservations WHERE seat_id = ?`), seatID); err != nil {
			return fmt.Errorf("delete reservation: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			r.d.Rebind(`UPDATE seats SET reserved_by = NULL WHERE id = ? AND reserved_by IS NOT NULL`), seatID)
		if err != nil {
			return fmt.Errorf("clear owner: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		released = n == 1
		return nil
	})
	return released, err
}

type seatTx struct {
	tx *sql.Tx
	d  database.Dialect
}

func (t *seatTx) ConditionalReserve(ctx context.Context, seatID, userID uint64) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		t.d.Rebind(`UPDATE seats SET reserved_by = ? WHERE id = ? AND reserved_by IS NULL`), userID, seatID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *seatTx) CreateReservation(ctx context.Context, userID, eventID, seatID uint64) (*model.Reservation, error) {
	id, err := t.d.InsertID(ctx, t.tx,
		`INSERT INTO reservations (user_id, event_id, seat_id) VALUES (?, ?, ?)`, userID, eventID, seatID)
	if err != nil {
		return nil, err
	}
	rv := model.Reservation{}
	err = t.tx.QueryRowContext(ctx,
		t.d.Rebind(`SELECT id, user_id, event_id, seat_id, created_at FROM reservations WHERE id = ?`), id).
		Scan(&rv.ID, &rv.UserID, &rv.EventID, &rv.SeatID, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func ownerPtr(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	u := uint64(v.Int64)
	return &u
}
