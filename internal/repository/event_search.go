package repository

import (
	"context"
	"regexp"
	"strings"

	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// buildEventFilter turns a filter into a WHERE clause with `?` placeholders.
// Name and location are case-insensitive substring matches, category is
// exact and date selects events on that calendar day.
func buildEventFilter(d database.Dialect, f model.EventFilter) (string, []any, error) {
	where := []string{}
	args := []any{}

	if s := strings.TrimSpace(f.Name); s != "" {
		where = append(where, d.ILike("name"))
		args = append(args, "%"+s+"%")
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		where = append(where, d.ILike("location"))
		args = append(args, "%"+s+"%")
	}
	if s := strings.TrimSpace(f.Category); s != "" {
		where = append(where, "category = ?")
		args = append(args, s)
	}
	if s := strings.TrimSpace(f.Date); s != "" {
		if !dateRe.MatchString(s) {
			return "", nil, ErrInvalidDate
		}
		where = append(where, "DATE(date) = ?")
		args = append(args, s)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args, nil
}

// Search lists events matching the filter ordered by date.
func (r *EventRepo) Search(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	cond, args, err := buildEventFilter(r.d, f)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + eventColumns + ` FROM events WHERE ` + cond + ` ORDER BY date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.Price, &e.TotalSeats, &e.Category, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
