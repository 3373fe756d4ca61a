package schema

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kubeinventory/schema/internal/testdb"
)

// TestMain replaces the normal test runner for this package. It launches the
// testing database containers (when Docker is available) and the SQLite file
// the tests connect to.
//
func TestMain(m *testing.M) {
	testdb.Setup()
	code := m.Run()

	// Purge all the containers we created
	// You can't defer this because os.Exit doesn't execute defers
	testdb.Teardown()

	os.Exit(code)
}

func withEachDialect(t *testing.T, f func(t *testing.T, d Dialect)) {
	dialects := []Dialect{Postgres, MySQL, SQLite, MSSQL}
	for _, dialect := range dialects {
		t.Run(fmt.Sprintf("%T", dialect), func(t *testing.T) {
			f(t, dialect)
		})
	}
}

func withEachTestDB(t *testing.T, f func(t *testing.T, tdb *testdb.TestDB, d Dialect)) {
	testdb.Each(t, func(t *testing.T, tdb *testdb.TestDB) {
		f(t, tdb, dialectFor(t, tdb))
	})
}

func dialectFor(t *testing.T, tdb *testdb.TestDB) Dialect {
	t.Helper()
	dialect, err := DialectForDriver(tdb.Driver)
	if err != nil {
		t.Fatal(err)
	}
	return dialect
}

// makeTestMigrator is a utility function which produces a migrator with an
// isolated environment (isolated due to a unique name for the migration
// tracking table).
func makeTestMigrator(options ...Option) Migrator {
	tableName := time.Now().Format(time.RFC3339Nano)
	options = append(options, WithTableName(tableName))
	return NewMigrator(options...)
}

func expectErrorContains(t *testing.T, err error, contains string) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected an error string containing '%s', but got nil", contains)
	} else if !strings.Contains(err.Error(), contains) {
		t.Errorf("Expected an error string containing '%s', but got '%s' instead", contains, err.Error())
	}
}

// uniqueName builds a table name which won't collide with other test runs
// sharing the same database
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
