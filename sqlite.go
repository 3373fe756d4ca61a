package schema

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// SQLite is the dialect for sqlite3 databases. It does not implement
// Locker: SQLite serializes writers on its own.
var SQLite = sqliteDialect{}

type sqliteDialect struct{}

// CreateMigrationsTable implements the Dialect interface to create the
// table which tracks applied migrations. It only creates the table if it
// does not already exist
func (s sqliteDialect) CreateMigrationsTable(ctx context.Context, tx Queryer, tableName string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL,
			checksum TEXT NOT NULL DEFAULT '',
			execution_time_in_millis INTEGER NOT NULL DEFAULT 0,
			applied_at DATETIME
		)`, tableName)
	_, err := tx.ExecContext(ctx, query)
	return err
}

func (s sqliteDialect) records() ledger {
	return ledger{format: sq.Question}
}

// InsertAppliedMigration records a migration after it has run
func (s sqliteDialect) InsertAppliedMigration(ctx context.Context, tx Queryer, tableName string, am *AppliedMigration) error {
	return s.records().insert(ctx, tx, tableName, am)
}

// DeleteAppliedMigration removes the record of a reverted migration
func (s sqliteDialect) DeleteAppliedMigration(ctx context.Context, tx Queryer, tableName string, id string) error {
	return s.records().delete(ctx, tx, tableName, id)
}

// GetAppliedMigrations reads the whole tracking table, ordered by ID
func (s sqliteDialect) GetAppliedMigrations(ctx context.Context, tx Queryer, tableName string) ([]*AppliedMigration, error) {
	return s.records().list(ctx, tx, tableName)
}

// QuotedTableName returns the string value of the name of the migration
// tracking table after it has been quoted for SQLite. SQLite has no
// schemas, so schemaName is ignored.
func (s sqliteDialect) QuotedTableName(_, tableName string) string {
	return s.QuotedIdent(tableName)
}

// QuotedIdent wraps the supplied string in double quotes
func (s sqliteDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (s sqliteDialect) ddl() ansiDDL {
	return ansiDDL{quote: s.QuotedIdent, columnType: s.ColumnTypeSQL, primaryKey: "INTEGER PRIMARY KEY AUTOINCREMENT"}
}

// ColumnTypeSQL maps a portable column type to the declared type SQLite
// stores in its schema
func (s sqliteDialect) ColumnTypeSQL(t ColumnType) string {
	switch t {
	case Text:
		return "TEXT"
	case Float:
		return "FLOAT"
	case Boolean:
		return "BOOLEAN"
	case BigInt:
		return "BIGINT"
	case Timestamp:
		return "DATETIME"
	default:
		return "VARCHAR"
	}
}

func (s sqliteDialect) CreateTableSQL(table string, columns []Column) string {
	return s.ddl().createTable(table, columns)
}

func (s sqliteDialect) DropTableSQL(table string) string {
	return s.ddl().dropTable(table)
}

func (s sqliteDialect) AddColumnSQL(table string, column Column) string {
	return s.ddl().addColumn(table, column)
}

// RemoveColumnSQL requires SQLite 3.35 or newer
func (s sqliteDialect) RemoveColumnSQL(table, column string) string {
	return s.ddl().removeColumn(table, column)
}

func (s sqliteDialect) RenameColumnSQL(table, from, to string) string {
	return s.ddl().renameColumn(table, from, to)
}

func (s sqliteDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (s sqliteDialect) InsertReturningID(ctx context.Context, tx Queryer, insert sq.InsertBuilder) (int64, error) {
	return insertLastInsertID(ctx, tx, insert.PlaceholderFormat(sq.Question))
}
