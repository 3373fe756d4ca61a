package schema

import (
	"context"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"
)

const postgresAdvisoryLockSalt uint32 = 542384964

// Postgres is the dialect for Postgres-compatible
// databases
var Postgres = postgresDialect{}

type postgresDialect struct{}

// Lock implements the Locker interface to obtain a global lock before the
// migrations are run.
func (p postgresDialect) Lock(ctx context.Context, tx Queryer, tableName string) error {
	lockID := p.advisoryLockID(tableName)
	query := fmt.Sprintf("SELECT pg_advisory_lock(%s)", lockID)
	_, err := tx.ExecContext(ctx, query)
	return err
}

// Unlock implements the Locker interface to release the global lock after the
// migrations are run.
func (p postgresDialect) Unlock(ctx context.Context, tx Queryer, tableName string) error {
	lockID := p.advisoryLockID(tableName)
	query := fmt.Sprintf("SELECT pg_advisory_unlock(%s)", lockID)
	_, err := tx.ExecContext(ctx, query)
	return err
}

// CreateMigrationsTable implements the Dialect interface to create the
// table which tracks applied migrations. It only creates the table if it
// does not already exist
func (p postgresDialect) CreateMigrationsTable(ctx context.Context, tx Queryer, tableName string) error {
	query := fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id VARCHAR(255) NOT NULL,
					checksum VARCHAR(32) NOT NULL DEFAULT '',
					execution_time_in_millis INTEGER NOT NULL DEFAULT 0,
					applied_at TIMESTAMP WITH TIME ZONE NOT NULL
				)
			`, tableName)
	_, err := tx.ExecContext(ctx, query)
	return err
}

func (p postgresDialect) records() ledger {
	return ledger{format: sq.Dollar}
}

// InsertAppliedMigration records a migration after it has run
func (p postgresDialect) InsertAppliedMigration(ctx context.Context, tx Queryer, tableName string, am *AppliedMigration) error {
	return p.records().insert(ctx, tx, tableName, am)
}

// DeleteAppliedMigration removes the record of a reverted migration
func (p postgresDialect) DeleteAppliedMigration(ctx context.Context, tx Queryer, tableName string, id string) error {
	return p.records().delete(ctx, tx, tableName, id)
}

// GetAppliedMigrations reads the whole tracking table, ordered by ID
func (p postgresDialect) GetAppliedMigrations(ctx context.Context, tx Queryer, tableName string) ([]*AppliedMigration, error) {
	return p.records().list(ctx, tx, tableName)
}

// QuotedTableName returns the string value of the name of the migration
// tracking table after it has been quoted for Postgres
func (p postgresDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return p.QuotedIdent(tableName)
	}
	return p.QuotedIdent(schemaName) + "." + p.QuotedIdent(tableName)
}

// QuotedIdent wraps the supplied string in the Postgres identifier
// quote character
func (p postgresDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteRune('"')
	for _, r := range ident {
		switch {
		case unicode.IsSpace(r):
			// Skip spaces
			continue
		case r == '"':
			// Escape double-quotes with repeated double-quotes
			sb.WriteString(`""`)
		case r == ';':
			// Ignore the command termination character
			continue
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune('"')
	return sb.String()
}

// advisoryLockID generates a table-specific lock name to use
func (p postgresDialect) advisoryLockID(tableName string) string {
	sum := crc32.ChecksumIEEE([]byte(tableName))
	sum = sum * postgresAdvisoryLockSalt
	return fmt.Sprint(sum)
}

func (p postgresDialect) ddl() ansiDDL {
	return ansiDDL{quote: p.QuotedIdent, columnType: p.ColumnTypeSQL, primaryKey: "BIGSERIAL PRIMARY KEY"}
}

// ColumnTypeSQL maps a portable column type to its Postgres type
func (p postgresDialect) ColumnTypeSQL(t ColumnType) string {
	switch t {
	case Text:
		return "TEXT"
	case Float:
		return "DOUBLE PRECISION"
	case Boolean:
		return "BOOLEAN"
	case BigInt:
		return "BIGINT"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return "CHARACTER VARYING"
	}
}

func (p postgresDialect) CreateTableSQL(table string, columns []Column) string {
	return p.ddl().createTable(table, columns)
}

func (p postgresDialect) DropTableSQL(table string) string {
	return p.ddl().dropTable(table)
}

func (p postgresDialect) AddColumnSQL(table string, column Column) string {
	return p.ddl().addColumn(table, column)
}

func (p postgresDialect) RemoveColumnSQL(table, column string) string {
	return p.ddl().removeColumn(table, column)
}

func (p postgresDialect) RenameColumnSQL(table, from, to string) string {
	return p.ddl().renameColumn(table, from, to)
}

// PlaceholderFormat returns the $1, $2 style used by Postgres drivers
func (p postgresDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Dollar
}

// InsertReturningID appends a RETURNING clause, since lib/pq does not
// support LastInsertId
func (p postgresDialect) InsertReturningID(ctx context.Context, tx Queryer, insert sq.InsertBuilder) (int64, error) {
	insert = insert.PlaceholderFormat(sq.Dollar).Suffix("RETURNING " + p.QuotedIdent(primaryKeyColumn))
	return insertScanID(ctx, tx, insert)
}
