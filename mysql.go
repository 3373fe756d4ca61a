package schema

import (
	"context"
	"fmt"
	"hash/crc32"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const mysqlLockSalt uint32 = 271192482

// MySQL is the dialect which should be used for MySQL/MariaDB databases
var MySQL = mysqlDialect{}

type mysqlDialect struct{}

// Lock implements the Locker interface to obtain a global lock before the
// migrations are run.
func (m mysqlDialect) Lock(ctx context.Context, tx Queryer, tableName string) error {
	lockID := m.advisoryLockID(tableName)
	query := fmt.Sprintf(`SELECT GET_LOCK('%s', 10)`, lockID)
	_, err := tx.ExecContext(ctx, query)
	return err
}

// Unlock implements the Locker interface to release the global lock after the
// migrations are run.
func (m mysqlDialect) Unlock(ctx context.Context, tx Queryer, tableName string) error {
	lockID := m.advisoryLockID(tableName)
	query := fmt.Sprintf(`SELECT RELEASE_LOCK('%s')`, lockID)
	_, err := tx.ExecContext(ctx, query)
	return err
}

// CreateMigrationsTable implements the Dialect interface to create the
// table which tracks applied migrations. It only creates the table if it
// does not already exist
func (m mysqlDialect) CreateMigrationsTable(ctx context.Context, tx Queryer, tableName string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) NOT NULL,
			checksum VARCHAR(32) NOT NULL DEFAULT '',
			execution_time_in_millis INTEGER NOT NULL DEFAULT 0,
			applied_at TIMESTAMP NOT NULL
		)`, tableName)
	_, err := tx.ExecContext(ctx, query)
	return err
}

func (m mysqlDialect) records() ledger {
	return ledger{format: sq.Question}
}

// InsertAppliedMigration records a migration after it has run
func (m mysqlDialect) InsertAppliedMigration(ctx context.Context, tx Queryer, tableName string, am *AppliedMigration) error {
	return m.records().insert(ctx, tx, tableName, am)
}

// DeleteAppliedMigration removes the record of a reverted migration
func (m mysqlDialect) DeleteAppliedMigration(ctx context.Context, tx Queryer, tableName string, id string) error {
	return m.records().delete(ctx, tx, tableName, id)
}

// GetAppliedMigrations reads the whole tracking table, ordered by ID
func (m mysqlDialect) GetAppliedMigrations(ctx context.Context, tx Queryer, tableName string) ([]*AppliedMigration, error) {
	return m.records().list(ctx, tx, tableName)
}

// QuotedTableName returns the string value of the name of the migration
// tracking table after it has been quoted for MySQL
func (m mysqlDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return m.QuotedIdent(tableName)
	}
	return m.QuotedIdent(schemaName) + "." + m.QuotedIdent(tableName)
}

// QuotedIdent wraps the supplied string in the MySQL identifier
// quote character
func (m mysqlDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// advisoryLockID generates a table-specific lock name to use
func (m mysqlDialect) advisoryLockID(tableName string) string {
	sum := crc32.ChecksumIEEE([]byte(tableName))
	sum = sum * mysqlLockSalt
	return fmt.Sprint(sum)
}

func (m mysqlDialect) ddl() ansiDDL {
	return ansiDDL{quote: m.QuotedIdent, columnType: m.ColumnTypeSQL, primaryKey: "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"}
}

// ColumnTypeSQL maps a portable column type to its MySQL type
func (m mysqlDialect) ColumnTypeSQL(t ColumnType) string {
	switch t {
	case Text:
		return "TEXT"
	case Float:
		return "DOUBLE"
	case Boolean:
		return "TINYINT(1)"
	case BigInt:
		return "BIGINT"
	case Timestamp:
		return "DATETIME"
	default:
		return "VARCHAR(255)"
	}
}

func (m mysqlDialect) CreateTableSQL(table string, columns []Column) string {
	return m.ddl().createTable(table, columns)
}

func (m mysqlDialect) DropTableSQL(table string) string {
	return m.ddl().dropTable(table)
}

func (m mysqlDialect) AddColumnSQL(table string, column Column) string {
	return m.ddl().addColumn(table, column)
}

func (m mysqlDialect) RemoveColumnSQL(table, column string) string {
	return m.ddl().removeColumn(table, column)
}

func (m mysqlDialect) RenameColumnSQL(table, from, to string) string {
	return m.ddl().renameColumn(table, from, to)
}

func (m mysqlDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (m mysqlDialect) InsertReturningID(ctx context.Context, tx Queryer, insert sq.InsertBuilder) (int64, error) {
	return insertLastInsertID(ctx, tx, insert.PlaceholderFormat(sq.Question))
}
