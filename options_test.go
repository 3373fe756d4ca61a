package schema

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
)

func TestTableNameOptions(t *testing.T) {
	tests := []struct {
		name           string
		options        []Option
		expectedSchema string
		expectedTable  string
	}{
		{"defaults", nil, "", DefaultTableName},
		{"table only", []Option{WithTableName("inventory_migrations")}, "", "inventory_migrations"},
		{"schema and table", []Option{WithTableName("inventory", "migrations")}, "inventory", "migrations"},
		{"no arguments", []Option{WithTableName()}, "", DefaultTableName},
		{"schema option", []Option{WithSchemaName("inventory")}, "inventory", DefaultTableName},
		{"later options win", []Option{WithTableName("a", "b"), WithSchemaName("c")}, "c", "b"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMigrator(tc.options...)
			if m.SchemaName != tc.expectedSchema {
				t.Errorf("Expected SchemaName '%s'. Got '%s'", tc.expectedSchema, m.SchemaName)
			}
			if m.TableName != tc.expectedTable {
				t.Errorf("Expected TableName '%s'. Got '%s'", tc.expectedTable, m.TableName)
			}
		})
	}
}

func TestDefaultDialect(t *testing.T) {
	m := NewMigrator()
	if m.Dialect != Postgres {
		t.Errorf("Expected Migrator to have Postgres Dialect by default. Got: %v", m.Dialect)
	}
}

func TestOptionsReturnCopies(t *testing.T) {
	m := Migrator{}
	modified := WithDialect(MSSQL)(m)
	if modified.Dialect != MSSQL {
		t.Errorf("Expected MSSQL dialect. Got '%v'", modified.Dialect)
	}
	if m.Dialect != nil {
		t.Errorf("Expected the original Migrator to be unchanged. Got '%v'", m.Dialect)
	}
}

func TestWithContextOption(t *testing.T) {
	if NewMigrator().context() == nil {
		t.Error("Expected a background context by default")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMigrator(WithContext(ctx))
	if m.context().Err() == nil {
		t.Error("Expected the supplied context to be used")
	}
}

func TestWithLoggerOption(t *testing.T) {
	m := Migrator{}
	if m.Logger != nil {
		t.Errorf("Expected nil Logger by default. Got '%v'", m.Logger)
	}
	modifiedMigrator := WithLogger(log.New(os.Stdout, "schema: ", log.Ldate|log.Ltime))(m)
	if modifiedMigrator.Logger == nil {
		t.Errorf("Expected logger to have been added")
	}
}

// StrLog keeps the last line logged to it
type StrLog string

func (nl *StrLog) Print(msgs ...interface{}) {
	var sb strings.Builder
	for _, msg := range msgs {
		sb.WriteString(fmt.Sprintf("%s", msg))
	}
	*nl = StrLog(sb.String())
}

func TestSimpleLogger(t *testing.T) {
	var str StrLog
	m := NewMigrator(WithLogger(&str))
	m.log("Migration '20170529142557' applied")
	if str != "Migration '20170529142557' applied" {
		t.Errorf("Unexpected log line '%s'", str)
	}
}
