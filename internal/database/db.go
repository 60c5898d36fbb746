package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/iliyamo/event-seat-booking/internal/config"
)

// Open connects to the configured database and verifies the connection.
// The row lock wait timeout is pushed down to the server so that a
// reservation blocked behind another transaction fails instead of hanging.
func Open(cfg config.Config) (*sql.DB, Dialect, error) {
	d, err := DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, Dialect{}, err
	}

	db, err := sql.Open(d.driver, dsn(d, cfg))
	if err != nil {
		return nil, d, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, d, fmt.Errorf("ping %s: %w", d.Name(), err)
	}
	return db, d, nil
}

func dsn(d Dialect, cfg config.Config) string {
	lockWait := cfg.LockWaitSec
	if lockWait <= 0 {
		lockWait = 5
	}
	if d.Postgres() {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.DBUser, cfg.DBPass),
			Host:   cfg.DBHost + ":" + cfg.DBPort,
			Path:   "/" + cfg.DBName,
		}
		q := url.Values{}
		q.Set("sslmode", "disable")
		q.Set("lock_timeout", fmt.Sprintf("%d", lockWait*1000))
		if cfg.StoreTimeout > 0 {
			q.Set("statement_timeout", fmt.Sprintf("%d", cfg.StoreTimeout.Milliseconds()))
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	auth := cfg.DBUser
	if cfg.DBPass != "" {
		auth = fmt.Sprintf("%s:%s", cfg.DBUser, cfg.DBPass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent.
	// Unknown params are sent to the server as session variables.
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&innodb_lock_wait_timeout=%d",
		auth, cfg.DBHost, cfg.DBPort, cfg.DBName, lockWait)
}
