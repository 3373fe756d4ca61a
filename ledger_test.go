package schema

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kubeinventory/schema/internal/testdb"
)

func TestGetAppliedMigrations(t *testing.T) {
	withEachTestDB(t, func(t *testing.T, tdb *testdb.TestDB, dialect Dialect) {
		db := tdb.Connect(t)

		migrator := makeTestMigrator(WithDialect(dialect))
		migrations := []*Migration{
			{ID: "2021-01-01 001", Script: "SELECT 1"},
			{ID: "2021-01-01 002", Script: "SELECT 2"},
		}
		err := migrator.Apply(db, migrations)
		if err != nil {
			t.Error(err)
		}

		expectedCount := len(migrations)
		applied, err := migrator.GetAppliedMigrations(db)
		if err != nil {
			t.Error(err)
		}
		if len(applied) != expectedCount {
			t.Errorf("Expected %d applied migrations. Got %d", expectedCount, len(applied))
		}
	})
}

func TestGetAppliedMigrationsErrorsWhenTheTableDoesntExist(t *testing.T) {
	withEachTestDB(t, func(t *testing.T, tdb *testdb.TestDB, dialect Dialect) {
		db := tdb.Connect(t)

		migrator := makeTestMigrator(WithDialect(dialect))
		migrations, err := migrator.GetAppliedMigrations(db)
		if err == nil {
			t.Error("Expected an error. Got none.")
		}
		if len(migrations) > 0 {
			t.Error("Expected empty list of applied migrations")
		}
	})
}

func TestGetAppliedMigrationsHasFriendlyScanError(t *testing.T) {
	withEachDialect(t, func(t *testing.T, dialect Dialect) {
		migrator := makeTestMigrator(WithDialect(dialect))

		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = db.Close() }()

		// Build a rowset that is completely different than the AppliedMigration
		// struct is expecting to force a Scan error
		rows := sqlmock.NewRows([]string{"nonsense", "column", "names"}).AddRow(1, "trash", "data")
		mock.ExpectQuery("^\\s*SELECT").RowsWillBeClosed().WillReturnRows(rows)

		_, err = migrator.GetAppliedMigrations(db)
		expectErrorContains(t, err, migrator.TableName)
	})
}

func TestGetAppliedMigrationsKeyedByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	appliedAt := time.Date(2017, 5, 29, 14, 25, 57, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "checksum", "execution_time_in_millis", "applied_at"}).
		AddRow("20170101000000", "abc", 12, appliedAt).
		AddRow("20170529142557", "def", 340, appliedAt)
	mock.ExpectQuery("SELECT id, checksum, execution_time_in_millis, applied_at").WillReturnRows(rows)

	migrator := NewMigrator(WithDialect(SQLite))
	applied, err := migrator.GetAppliedMigrations(db)
	if err != nil {
		t.Fatal(err)
	}
	unify, ok := applied["20170529142557"]
	if !ok {
		t.Fatal("Expected migration 20170529142557 in the applied set")
	}
	if unify.Checksum != "def" || unify.ExecutionTimeInMillis != 340 {
		t.Errorf("Unexpected applied migration %+v", unify)
	}
	if !unify.AppliedAt.Equal(appliedAt) {
		t.Errorf("Expected AppliedAt %s, got %s", appliedAt, unify.AppliedAt)
	}
}

func TestLedgerStatementsUseDialectPlaceholders(t *testing.T) {
	tests := map[Dialect][2]string{
		Postgres: {
			`INSERT INTO "migrations" (id,checksum,execution_time_in_millis,applied_at) VALUES ($1,$2,$3,$4)`,
			`DELETE FROM "migrations" WHERE id = $1`,
		},
		MySQL: {
			"INSERT INTO `migrations` (id,checksum,execution_time_in_millis,applied_at) VALUES (?,?,?,?)",
			"DELETE FROM `migrations` WHERE id = ?",
		},
		MSSQL: {
			`INSERT INTO [migrations] (id,checksum,execution_time_in_millis,applied_at) VALUES (@p1,@p2,@p3,@p4)`,
			`DELETE FROM [migrations] WHERE id = @p1`,
		},
	}
	for dialect, expected := range tests {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}

		am := &AppliedMigration{Migration: Migration{ID: "20170529142557", Script: "SELECT 1"}, ExecutionTimeInMillis: 5}
		mock.ExpectExec(regexp.QuoteMeta(expected[0])).
			WithArgs(am.ID, am.MD5(), 5, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(expected[1])).
			WithArgs(am.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		table := dialect.QuotedTableName("", "migrations")
		if err := dialect.InsertAppliedMigration(context.Background(), db, table, am); err != nil {
			t.Errorf("%T: %s", dialect, err)
		}
		if err := dialect.DeleteAppliedMigration(context.Background(), db, table, am.ID); err != nil {
			t.Errorf("%T: %s", dialect, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("%T: %s", dialect, err)
		}
		_ = db.Close()
	}
}

func TestMigratorStatus(t *testing.T) {
	withEachTestDB(t, func(t *testing.T, tdb *testdb.TestDB, dialect Dialect) {
		db := tdb.Connect(t)
		migrator := makeTestMigrator(WithDialect(dialect))

		first := &Migration{ID: "2021-01-01 001", Script: "SELECT 1"}
		second := &Migration{ID: "2021-01-01 002", Script: "SELECT 2"}
		if err := migrator.Apply(db, []*Migration{first}); err != nil {
			t.Fatal(err)
		}

		first.Script = "SELECT 10"
		statuses, err := migrator.Status(db, []*Migration{second, first})
		if err != nil {
			t.Fatal(err)
		}
		if len(statuses) != 2 || statuses[0].ID != first.ID || statuses[1].ID != second.ID {
			t.Fatalf("Expected statuses in ID order. Got %+v", statuses)
		}
		if statuses[0].Applied == nil || !statuses[0].Changed() {
			t.Errorf("Expected %s to be applied and changed", first.ID)
		}
		if statuses[1].Applied != nil || statuses[1].Changed() {
			t.Errorf("Expected %s to be pending", second.ID)
		}
	})
}

func TestAppliedAtTimeScan(t *testing.T) {
	var at appliedAtTime
	if err := at.Scan(nil); err != nil {
		t.Error(err)
	}
	if !at.Value.IsZero() {
		t.Errorf("Expected zero time for NULL. Got %s", at.Value)
	}

	for _, src := range []interface{}{[]byte("2021-03-04 05:06:07"), "2021-03-04 05:06:07.250"} {
		if err := at.Scan(src); err != nil {
			t.Error(err)
		}
		if at.Value.UTC().Format("2006-01-02 15:04:05") != "2021-03-04 05:06:07" {
			t.Errorf("Unexpected parsed time %s", at.Value.UTC())
		}
	}

	if err := at.Scan(42); err == nil {
		t.Error("Expected an error scanning an int")
	}
}
