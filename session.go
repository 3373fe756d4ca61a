package schema

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Session is handed to Go migrations. Every statement it issues runs inside
// the transaction of the migration being applied or reverted, and DDL is
// generated by the Migrator's Dialect.
type Session struct {
	ctx     context.Context
	tx      Queryer
	dialect Dialect
	logger  Logger
}

// NewSession builds a Session outside of a Migrator, for running migration
// functions directly against a transaction
func NewSession(ctx context.Context, tx Queryer, dialect Dialect, logger Logger) *Session {
	return &Session{ctx: ctx, tx: tx, dialect: dialect, logger: logger}
}

// Dialect returns the dialect statements are generated for
func (s *Session) Dialect() Dialect {
	return s.dialect
}

// Builder returns a squirrel statement builder using the dialect's
// placeholder format. Subqueries nested in its statements should be plain
// sq.Select builders so placeholders are only rewritten once.
func (s *Session) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(s.dialect.PlaceholderFormat())
}

// Exec runs a raw statement
func (s *Session) Exec(query string, args ...interface{}) (sql.Result, error) {
	return s.tx.ExecContext(s.ctx, query, args...)
}

// Query runs a raw query
func (s *Session) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.tx.QueryContext(s.ctx, query, args...)
}

// Run renders a squirrel statement and executes it, returning the number of
// rows it affected
func (s *Session) Run(stmt sq.Sqlizer) (int64, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w\n%s", err, query)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report affected rows for every statement
		return -1, nil
	}
	return affected, nil
}

// InsertReturningID runs the insert and returns the generated primary key
func (s *Session) InsertReturningID(insert sq.InsertBuilder) (int64, error) {
	return s.dialect.InsertReturningID(s.ctx, s.tx, insert)
}

// CreateTable creates a table with an auto-incrementing "id" primary key
// followed by the supplied nullable columns
func (s *Session) CreateTable(table string, columns ...Column) error {
	return s.ddl(s.dialect.CreateTableSQL(table, columns))
}

// DropTable drops a table
func (s *Session) DropTable(table string) error {
	return s.ddl(s.dialect.DropTableSQL(table))
}

// AddColumn adds a nullable column to a table
func (s *Session) AddColumn(table string, column Column) error {
	return s.ddl(s.dialect.AddColumnSQL(table, column))
}

// RemoveColumn drops a column from a table
func (s *Session) RemoveColumn(table, column string) error {
	return s.ddl(s.dialect.RemoveColumnSQL(table, column))
}

// RenameColumn renames a column, keeping its type and data
func (s *Session) RenameColumn(table, from, to string) error {
	return s.ddl(s.dialect.RenameColumnSQL(table, from, to))
}

// SayWithTime logs message, runs f and logs how long it took
func (s *Session) SayWithTime(message string, f func() error) error {
	s.say("-- " + message)
	startedAt := time.Now()
	if err := f(); err != nil {
		return fmt.Errorf("%s: %w", message, err)
	}
	s.say(fmt.Sprintf("   -> %.4fs", time.Since(startedAt).Seconds()))
	return nil
}

func (s *Session) ddl(statement string) error {
	startedAt := time.Now()
	if _, err := s.Exec(statement); err != nil {
		return fmt.Errorf("%s: %w", statement, err)
	}
	s.say(fmt.Sprintf("-- %s\n   -> %.4fs", statement, time.Since(startedAt).Seconds()))
	return nil
}

func (s *Session) say(msg string) {
	if s.logger != nil {
		s.logger.Print(msg)
	}
}
