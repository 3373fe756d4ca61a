package schema

import "context"

// Option customizes a Migrator built by NewMigrator. Options return a
// modified copy and never change the Migrator they are given.
type Option func(m Migrator) Migrator

// WithDialect sets the SQL dialect used for the tracking table and for the
// DDL Go migrations issue. Usage: NewMigrator(WithDialect(MySQL))
func WithDialect(dialect Dialect) Option {
	return func(m Migrator) Migrator {
		m.Dialect = dialect
		return m
	}
}

// WithTableName names the tracking table. With two arguments the first is
// the schema holding it, so WithTableName("inventory", "schema_migrations")
// tracks into "inventory"."schema_migrations" on Postgres. Calling it with
// no arguments leaves the Migrator unchanged.
func WithTableName(names ...string) Option {
	return func(m Migrator) Migrator {
		switch len(names) {
		case 0:
		case 1:
			m.TableName = names[0]
		default:
			m.SchemaName, m.TableName = names[0], names[1]
		}
		return m
	}
}

// WithSchemaName sets the schema holding the tracking table, leaving its
// name alone
func WithSchemaName(schemaName string) Option {
	return func(m Migrator) Migrator {
		m.SchemaName = schemaName
		return m
	}
}

// WithContext sets the context handed to the driver and to Go migrations
func WithContext(ctx context.Context) Option {
	return func(m Migrator) Migrator {
		m.ctx = ctx
		return m
	}
}

// Logger receives progress output: lock acquisition, per-migration timing
// and the statements Go migrations run. A Migrator without one is silent.
// *log.Logger and *logrus.Logger both satisfy it.
type Logger interface {
	Print(...interface{})
}

// WithLogger sets the Logger. Usage: NewMigrator(WithLogger(logrus.New()))
func WithLogger(logger Logger) Option {
	return func(m Migrator) Migrator {
		m.Logger = logger
		return m
	}
}
