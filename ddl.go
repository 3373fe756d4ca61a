package schema

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// primaryKeyColumn is the name of the surrogate key every created table gets
const primaryKeyColumn = "id"

// ansiDDL builds the DDL statements shared by dialects which follow the
// SQL standard closely enough. quote and columnType come from the dialect.
type ansiDDL struct {
	quote      func(string) string
	columnType func(ColumnType) string
	primaryKey string
}

func (a ansiDDL) createTable(table string, columns []Column) string {
	defs := make([]string, 0, len(columns)+1)
	defs = append(defs, a.quote(primaryKeyColumn)+" "+a.primaryKey)
	for _, column := range columns {
		defs = append(defs, a.quote(column.Name)+" "+a.columnType(column.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", a.quote(table), strings.Join(defs, ", "))
}

func (a ansiDDL) dropTable(table string) string {
	return fmt.Sprintf("DROP TABLE %s", a.quote(table))
}

func (a ansiDDL) addColumn(table string, column Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", a.quote(table), a.quote(column.Name), a.columnType(column.Type))
}

func (a ansiDDL) removeColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", a.quote(table), a.quote(column))
}

func (a ansiDDL) renameColumn(table, from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", a.quote(table), a.quote(from), a.quote(to))
}

// insertLastInsertID runs the insert and reads the generated key from the
// driver's LastInsertId, for drivers which support it
func insertLastInsertID(ctx context.Context, tx Queryer, insert sq.InsertBuilder) (int64, error) {
	query, args, err := insert.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// insertScanID runs an insert whose statement yields the generated key as
// a single-row result set
func insertScanID(ctx context.Context, tx Queryer, insert sq.InsertBuilder) (id int64, err error) {
	query, args, err := insert.ToSql()
	if err != nil {
		return 0, err
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	defer func() { err = coalesceErrs(err, rows.Close()) }()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("insert returned no id: %s", query)
	}
	err = rows.Scan(&id)
	return id, err
}
