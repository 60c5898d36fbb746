package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

const eventColumns = "id, name, date, location, price, total_seats, category, created_at"

// EventRepo manages persistence for events and the seats created with them.
type EventRepo struct {
	db *sql.DB
	d  database.Dialect
}

func NewEventRepo(db *sql.DB, d database.Dialect) *EventRepo {
	return &EventRepo{db: db, d: d}
}

// GetByID returns ErrEventNotFound if there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *EventRepo) getByID(ctx context.Context, q database.Execer, id uint64) (*model.Event, error) {
	var e model.Event
	err := q.QueryRowContext(ctx, r.d.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id).
		Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.Price, &e.TotalSeats, &e.Category, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateWithSeats inserts the event and its TotalSeats seats in one
// transaction.  Seats go in as a single multi-row INSERT labelled
// Seat-1 .. Seat-N; either everything is stored or nothing is.
func (r *EventRepo) CreateWithSeats(ctx context.Context, e *model.Event) error {
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

	id, err := r.d.InsertID(ctx, tx,
		`INSERT INTO events (name, date, location, price, total_seats, category) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.Date.UTC(), e.Location, e.Price, e.TotalSeats, e.Category)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if e.TotalSeats > 0 {
		query, args := seatBatch(id, e.TotalSeats)
		if _, err := tx.ExecContext(ctx, r.d.Rebind(query), args...); err != nil {
			return fmt.Errorf("insert seats: %w", err)
		}
	}

	created, err := r.getByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*e = *created
	return nil
}

// seatBatch builds one INSERT covering n seats of an event.
func seatBatch(eventID uint64, n int) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO seats (event_id, seat_number) VALUES ")
	args := make([]any, 0, n*2)
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?)")
		args = append(args, eventID, fmt.Sprintf("Seat-%d", i))
	}
	return b.String(), args
}

// Update overwrites the editable fields of an event.  The seat count is
// fixed at creation and is not changed here.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		r.d.Rebind(`UPDATE events SET name = ?, date = ?, location = ?, price = ?, category = ? WHERE id = ?`),
		e.Name, e.Date.UTC(), e.Location, e.Price, e.Category, e.ID)
	if err != nil {
		return err
	}
	// MySQL reports zero affected rows for unchanged values, so existence
	// is confirmed by reading the row back.
	updated, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *updated
	return nil
}

// Delete removes an event; seats and reservations cascade.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM events WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
