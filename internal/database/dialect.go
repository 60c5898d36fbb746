package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect smooths over the few places where MySQL and Postgres differ for
// this service: placeholder syntax and retrieving generated ids.
type Dialect struct {
	driver string
}

var (
	MySQL    = Dialect{driver: "mysql"}
	Postgres = Dialect{driver: "postgres"}
)

// DialectFor maps a DB_DRIVER value to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "", "mysql":
		return MySQL, nil
	case "postgres":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported driver %q", driver)
}

func (d Dialect) Name() string   { return d.driver }
func (d Dialect) Postgres() bool { return d.driver == "postgres" }

// Rebind rewrites `?` placeholders to `$1, $2, ...` for Postgres.  Question
// marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if !d.Postgres() {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InsertID runs an INSERT and returns the generated primary key.  Postgres
// has no LastInsertId, so the statement is extended with RETURNING id.
func (d Dialect) InsertID(ctx context.Context, ex Execer, query string, args ...any) (uint64, error) {
	if d.Postgres() {
		var id uint64
		if err := ex.QueryRowContext(ctx, d.Rebind(query)+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Now is the SQL expression for the current timestamp.
func (d Dialect) Now() string {
	if d.Postgres() {
		return "NOW()"
	}
	return "UTC_TIMESTAMP()"
}

// ILike returns a case-insensitive substring match on col.
func (d Dialect) ILike(col string) string {
	if d.Postgres() {
		return col + " ILIKE ?"
	}
	return "LOWER(" + col + ") LIKE LOWER(?)"
}
