package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrConnFailed is returned by BadDB when asked for a connection
var ErrConnFailed = errors.New("connection refused")

// BadQueryer fails every statement with an error quoting the SQL, so tests
// can tell which statement was attempted
type BadQueryer struct{}

func (bq BadQueryer) ExecContext(_ context.Context, query string, _ ...interface{}) (sql.Result, error) {
	return nil, fmt.Errorf("FAIL: %s", strings.TrimSpace(query))
}

func (bq BadQueryer) QueryContext(_ context.Context, query string, _ ...interface{}) (*sql.Rows, error) {
	return nil, fmt.Errorf("FAIL: %s", strings.TrimSpace(query))
}

// BadDB cannot hand out connections
type BadDB struct{}

func (bd BadDB) Conn(context.Context) (*sql.Conn, error) {
	return nil, ErrConnFailed
}
