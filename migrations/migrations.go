package migrations

import (
	"github.com/kubeinventory/schema"
)

var registry []*schema.Migration

// register adds a migration to the set returned by All. It is called from
// the init function of each migration file.
func register(id string, up, down schema.MigrationFunc) {
	registry = append(registry, &schema.Migration{ID: id, Up: up, Down: down})
}

// All returns every container inventory migration, ordered by ID. The
// returned migrations are copies, so callers may modify them freely.
func All() []*schema.Migration {
	all := make([]*schema.Migration, 0, len(registry))
	for _, migration := range registry {
		m := *migration
		all = append(all, &m)
	}
	schema.SortMigrations(all)
	return all
}
