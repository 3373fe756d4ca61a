// Package migrations holds the ordered schema changes for the container
// inventory tables. Each migration is a pair of Go functions run by a
// schema.Migrator through a schema.Session:
//
//	m := schema.NewMigrator(schema.WithDialect(schema.Postgres))
//	err := m.Apply(db, migrations.All())
//
// The baseline creates container_definitions, containers and the tables
// which reference them. The consolidation step which follows moves the
// definition attributes onto containers and repoints every reference at
// container ids.
package migrations
