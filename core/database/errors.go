package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Server error numbers that mean the connection or server is unusable,
// not that one statement was bad.
var systemicMySQLErrors = map[uint16]struct{}{
	1040: {}, // too many connections
	1053: {}, // server shutdown in progress
	1205: {}, // lock wait timeout
	1213: {}, // deadlock
	2002: {}, // can't connect
	2006: {}, // server has gone away
	2013: {}, // lost connection during query
}

var systemicPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"bad connection",
	"server has gone away",
	"database is closed",
	"sql: database is closed",
	"i/o timeout",
	"database is locked",
	"conn closed",
}

// IsSystemic reports whether err means the storage layer itself is unavailable.
// Such errors abort a whole import run; anything else is treated as a problem
// with the single statement that produced it.
func IsSystemic(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		_, ok := systemicMySQLErrors[myErr.Number]
		return ok
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range systemicPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicated key")
}
