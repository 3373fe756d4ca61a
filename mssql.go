package schema

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"
)

// MSSQL is the dialect for MS SQL-compatible databases
var MSSQL = mssqlDialect{}

type mssqlDialect struct{}

// QuotedTableName returns the string value of the name of the migration
// tracking table after it has been quoted for SQL Server
func (s mssqlDialect) QuotedTableName(schemaName, tableName string) string {
	if schemaName == "" {
		return s.QuotedIdent(tableName)
	}
	return fmt.Sprintf("%s.%s", s.QuotedIdent(schemaName), s.QuotedIdent(tableName))
}

// QuotedIdent wraps the supplied string in square brackets
func (s mssqlDialect) QuotedIdent(ident string) string {
	if ident == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteRune('[')
	for _, r := range ident {
		switch {
		case unicode.IsSpace(r):
			continue
		case r == ';':
			continue
		case r == ']':
			sb.WriteRune(r)
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(']')

	return sb.String()
}

func (s mssqlDialect) CreateMigrationsTable(ctx context.Context, tx Queryer, tableName string) error {
	unquotedTableName := tableName[1 : len(tableName)-1]
	query := fmt.Sprintf(`
		IF NOT EXISTS (SELECT * FROM Sysobjects WHERE NAME='%s' AND XTYPE='U')
			CREATE TABLE %s (
				id VARCHAR(255) NOT NULL,
				checksum VARCHAR(32) NOT NULL DEFAULT '',
				execution_time_in_millis INTEGER NOT NULL DEFAULT 0,
				applied_at DATETIMEOFFSET NOT NULL
			)
	`, unquotedTableName, tableName)
	_, err := tx.ExecContext(ctx, query)
	return err
}

func (s mssqlDialect) records() ledger {
	return ledger{format: sq.AtP}
}

// InsertAppliedMigration records a migration after it has run
func (s mssqlDialect) InsertAppliedMigration(ctx context.Context, tx Queryer, tableName string, am *AppliedMigration) error {
	return s.records().insert(ctx, tx, tableName, am)
}

// DeleteAppliedMigration removes the record of a reverted migration
func (s mssqlDialect) DeleteAppliedMigration(ctx context.Context, tx Queryer, tableName string, id string) error {
	return s.records().delete(ctx, tx, tableName, id)
}

// GetAppliedMigrations reads the whole tracking table, ordered by ID
func (s mssqlDialect) GetAppliedMigrations(ctx context.Context, tx Queryer, tableName string) ([]*AppliedMigration, error) {
	return s.records().list(ctx, tx, tableName)
}

func (s mssqlDialect) ddl() ansiDDL {
	return ansiDDL{quote: s.QuotedIdent, columnType: s.ColumnTypeSQL, primaryKey: "BIGINT IDENTITY(1,1) PRIMARY KEY"}
}

// ColumnTypeSQL maps a portable column type to its SQL Server type
func (s mssqlDialect) ColumnTypeSQL(t ColumnType) string {
	switch t {
	case Text:
		return "NVARCHAR(MAX)"
	case Float:
		return "FLOAT"
	case Boolean:
		return "BIT"
	case BigInt:
		return "BIGINT"
	case Timestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(255)"
	}
}

func (s mssqlDialect) CreateTableSQL(table string, columns []Column) string {
	return s.ddl().createTable(table, columns)
}

func (s mssqlDialect) DropTableSQL(table string) string {
	return s.ddl().dropTable(table)
}

// AddColumnSQL uses T-SQL's ADD, which takes no COLUMN keyword
func (s mssqlDialect) AddColumnSQL(table string, column Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s %s", s.QuotedIdent(table), s.QuotedIdent(column.Name), s.ColumnTypeSQL(column.Type))
}

func (s mssqlDialect) RemoveColumnSQL(table, column string) string {
	return s.ddl().removeColumn(table, column)
}

// RenameColumnSQL goes through sp_rename, which takes the object names as
// string literals rather than identifiers
func (s mssqlDialect) RenameColumnSQL(table, from, to string) string {
	literal := func(v string) string { return "'" + strings.ReplaceAll(v, "'", "''") + "'" }
	return fmt.Sprintf("EXEC sp_rename %s, %s, 'COLUMN'", literal(table+"."+from), literal(to))
}

// PlaceholderFormat returns the @p1, @p2 style used by go-mssqldb
func (s mssqlDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.AtP
}

func (s mssqlDialect) InsertReturningID(ctx context.Context, tx Queryer, insert sq.InsertBuilder) (int64, error) {
	insert = insert.PlaceholderFormat(sq.AtP).Suffix("; SELECT CAST(SCOPE_IDENTITY() AS BIGINT)")
	return insertScanID(ctx, tx, insert)
}
