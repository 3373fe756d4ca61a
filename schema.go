package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DefaultTableName defines the name of the database table which will
// hold the status of applied migrations
const DefaultTableName = "schema_migrations"

// ErrNilDB is thrown when the database pointer is nil
var ErrNilDB = errors.New("DB pointer is nil")

// ErrNothingToRevert is returned by Revert when none of the supplied
// migrations has been applied
var ErrNothingToRevert = errors.New("no applied migration to revert")

// ErrIrreversible is returned by Revert when the most recently applied
// migration has neither a Down function nor a DownScript
var ErrIrreversible = errors.New("migration is irreversible")

// DB defines the interface for a *sql.DB, which can hand out a dedicated
// connection for the duration of a migration run.
type DB interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Queryer is something which can execute a Query (either a sql.DB,
// sql.Conn or a sql.Tx)
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Transactor defines the interface for the BeginTx method from *sql.DB and
// *sql.Conn
type Transactor interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// transaction wraps the supplied function in a transaction with the supplied
// database connecion
//
func transaction(ctx context.Context, db Transactor, f func(*sql.Tx) error) (err error) {
	if db == nil {
		return ErrNilDB
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			default:
				err = fmt.Errorf("%s", p)
			}
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return f(tx)
}

// coalesceErrs returns the first non-nil error in the list
func coalesceErrs(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
