package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsSystemic(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Canceled", context.Canceled, true},
		{"Deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"BadConn", fmt.Errorf("exec: %w", driver.ErrBadConn), true},
		{"GoneAway", &mysql.MySQLError{Number: 2006, Message: "MySQL server has gone away"}, true},
		{"Deadlock", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, true},
		{"DataTooLong", &mysql.MySQLError{Number: 1406, Message: "Data too long for column"}, false},
		{"Duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, false},
		{"NetOp", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"Pattern", errors.New("dial tcp: connection refused"), true},
		{"Constraint", errors.New("CHECK constraint failed: ip"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSystemic(tt.err))
		})
	}
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: assets.name_key")))
	assert.True(t, IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_assets_name_key"`)))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 2006}))
	assert.False(t, IsDuplicateKey(nil))
}
