// Package schema applies and reverts database migrations from inside an
// application using database/sql.
//
// A Migrator built with NewMigrator takes the dialect's lock, opens one
// transaction and runs every migration the tracking table does not list
// yet, in ID order:
//
//	m := schema.NewMigrator(schema.WithDialect(schema.MySQL))
//	err := m.Apply(db, migrations)
//
// Revert undoes the newest applied migration through its Down function or
// DownScript.
//
// A migration is either SQL (loaded from a directory, a file or an fs.FS,
// where "<id>.down.sql" holds the revert script of "<id>.sql") or a pair of
// MigrationFuncs. A MigrationFunc gets a Session bound to the transaction,
// which builds DML with squirrel and DDL with the Migrator's Dialect.
package schema
