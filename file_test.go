package schema

import (
	"os"
	"testing"
)

func TestMigrationFromFilePath(t *testing.T) {
	migration, err := MigrationFromFilePath("./example-migrations/2019-01-01 0900 Create Users.sql")
	if err != nil {
		t.Error(err)
	}
	if migration.Script != "CREATE TABLE users (id INTEGER NOT NULL PRIMARY KEY);" {
		t.Error("Failed to get correct contents of migration")
	}
}

func TestMigrationFromFilePathMissingFile(t *testing.T) {
	_, err := MigrationFromFilePath("./example-migrations/nope.sql")
	expectErrorContains(t, err, "nope.sql")
}

func TestMigrationFromFile(t *testing.T) {
	file, err := os.Open("./example-migrations/2019-01-01 0900 Create Users.sql")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = file.Close() }()

	migration, err := MigrationFromFile(file)
	if err != nil {
		t.Error(err)
	}
	if migration.ID != "2019-01-01 0900 Create Users" {
		t.Errorf("Incorrect ID: %s", migration.ID)
	}
	if migration.Script != "CREATE TABLE users (id INTEGER NOT NULL PRIMARY KEY);" {
		t.Errorf("Incorrect Script: %s", migration.Script)
	}
}

func TestMigrationsFromDirectoryPath(t *testing.T) {
	migrations, err := MigrationsFromDirectoryPath("./example-migrations")
	if err != nil {
		t.Fatal(err)
	}
	if len(migrations) != 2 {
		t.Fatalf("Expected 2 migrations (down scripts folded in). Got %d", len(migrations))
	}
	SortMigrations(migrations)
	expectID(t, migrations[0], "2019-01-01 0900 Create Users")
	if migrations[0].DownScript != "DROP TABLE users;" {
		t.Errorf("Expected the down script to be attached. Got '%s'", migrations[0].DownScript)
	}
	expectID(t, migrations[1], "2019-01-03 1000 Create Affiliates")
	if migrations[1].Reversible() {
		t.Error("Expected the affiliates migration to have no down path")
	}
}

func TestMigrationsFromDirectoryPathThrowsErrorForInvalidDirectory(t *testing.T) {
	migrations, err := MigrationsFromDirectoryPath("/a/totally/made/up/directory/path")
	if err == nil {
		t.Error("Expected an error trying to load migrations from a fake directory")
	}
	if len(migrations) > 0 {
		t.Errorf("Expected an empty list of migrations. Got %d", len(migrations))
	}
}

func TestPairMigrationsKeepsOrphanDownFiles(t *testing.T) {
	scripts := map[string]string{
		"a/1.sql":      "CREATE TABLE one (id INTEGER)",
		"a/2.down.sql": "DROP TABLE two",
	}
	migrations := pairMigrations([]string{"a/1.sql", "a/2.down.sql"}, scripts)
	if len(migrations) != 2 {
		t.Fatalf("Expected 2 migrations. Got %d", len(migrations))
	}
	SortMigrations(migrations)
	expectID(t, migrations[1], "2.down")
	expectScriptMatch(t, migrations[1], `^DROP TABLE two$`)
}
