// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation service and handlers to distinguish between different
// failure scenarios without inspecting driver errors themselves.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

var (
	ErrSeatNotFound  = errors.New("seat not found")
	ErrEventNotFound = errors.New("event not found")
	ErrEmailExists   = errors.New("email already exists")
	ErrInvalidDate   = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrUserNotFound  = errors.New("user not found")
)

// ErrSeatTaken is returned when a seat already has an owner, either
// observed up front or because a conditional write matched no row.
var ErrSeatTaken = errors.New("seat already reserved")

// MySQL server error numbers.
const (
	mysqlDupEntry     = 1062
	mysqlLockWait     = 1205
	mysqlDeadlock     = 1213
	mysqlQueryTimeout = 3024
)

// IsDuplicate reports whether err is a unique key violation.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDupEntry
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// IsTransient reports whether err means the store could not answer in
// time or at all: lock wait timeouts, deadlocks, cancelled statements,
// dropped connections and expired deadlines.  A transaction finished by
// its deadline before Commit surfaces as sql.ErrTxDone and counts too.
// Such failures say nothing about seat ownership.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrTxDone) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlLockWait, mysqlDeadlock, mysqlQueryTimeout:
			return true
		}
		return false
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		switch pe.Code {
		case "55P03", // lock_not_available
			"57014", // query_canceled (statement_timeout)
			"40P01", // deadlock_detected
			"40001", // serialization_failure
			"57P01": // admin_shutdown
			return true
		}
		return pe.Code.Class() == "08" // connection exception
	}
	var ne net.Error
	return errors.As(err, &ne)
}
