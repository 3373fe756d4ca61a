package schema

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ErrUnknownDriver is returned by DialectForDriver for database/sql driver
// names with no matching Dialect
var ErrUnknownDriver = errors.New("unknown database driver")

// Dialect defines the minimal interface for a database dialect. All dialects
// must implement functions to create the migrations table, get all applied
// migrations, insert and delete migration tracking records, and perform
// escaping for the tracking table's name. Every dialect is also a Definer
// so Go migrations can issue DDL through a Session.
type Dialect interface {
	QuotedTableName(schemaName, tableName string) string

	CreateMigrationsTable(ctx context.Context, tx Queryer, tableName string) error
	GetAppliedMigrations(ctx context.Context, tx Queryer, tableName string) (applied []*AppliedMigration, err error)
	InsertAppliedMigration(ctx context.Context, tx Queryer, tableName string, migration *AppliedMigration) error
	DeleteAppliedMigration(ctx context.Context, tx Queryer, tableName string, id string) error

	Definer
}

// Locker defines an optional Dialect extension for obtaining and releasing
// a global database lock during the running of migrations. This feature is
// supported by PostgreSQL and MySQL, but not SQLite.
type Locker interface {
	Lock(ctx context.Context, tx Queryer, tableName string) error
	Unlock(ctx context.Context, tx Queryer, tableName string) error
}

// Definer generates the dialect-specific DDL used by Go migrations.
type Definer interface {
	QuotedIdent(ident string) string
	ColumnTypeSQL(t ColumnType) string

	CreateTableSQL(table string, columns []Column) string
	DropTableSQL(table string) string
	AddColumnSQL(table string, column Column) string
	RemoveColumnSQL(table, column string) string
	RenameColumnSQL(table, from, to string) string

	// PlaceholderFormat is the bind parameter style of the dialect's driver
	PlaceholderFormat() sq.PlaceholderFormat

	// InsertReturningID runs the insert and returns the generated primary key
	InsertReturningID(ctx context.Context, tx Queryer, insert sq.InsertBuilder) (int64, error)
}

// ColumnType is a portable column type. Each Dialect maps it to a native
// type.
type ColumnType int

// Portable column types
const (
	String ColumnType = iota
	Text
	Float
	Boolean
	BigInt
	Timestamp
)

func (t ColumnType) String() string {
	switch t {
	case String:
		return "string"
	case Text:
		return "text"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case BigInt:
		return "bigint"
	case Timestamp:
		return "timestamp"
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// Column is a nullable column definition
type Column struct {
	Name string
	Type ColumnType
}

// DialectForDriver returns the Dialect for a database/sql driver name
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "sqlserver", "mssql":
		return MSSQL, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
