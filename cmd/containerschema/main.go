// Command containerschema applies and reverts the container inventory
// migrations against a database.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/kubeinventory/schema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	// Drivers selectable with --driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

func main() {
	if err := createRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func createRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "containerschema",
		Short:         "Manage the container inventory schema",
		SilenceUsage: true,
	}

	configManager := newConfigManager(rootCmd)
	rootCmd.AddCommand(createUpCmd(configManager))
	rootCmd.AddCommand(createDownCmd(configManager))
	rootCmd.AddCommand(createStatusCmd(configManager))
	return rootCmd
}

// environment is what every subcommand needs to talk to the database
type environment struct {
	db       *sql.DB
	migrator schema.Migrator
	logger   *logrus.Logger
}

func (e environment) Close() error {
	return e.db.Close()
}

// ensureTrackingTable creates the tracking table on a fresh database by
// applying an empty set of migrations
func (e environment) ensureTrackingTable() error {
	return e.migrator.Apply(e.db, nil)
}

func newEnvironment(cmd *cobra.Command, man configManager) (environment, error) {
	var env environment
	c, err := man.load()
	if err != nil {
		return env, err
	}

	env.logger = logrus.New()
	env.logger.SetOutput(cmd.ErrOrStderr())
	env.logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return env, err
	}
	env.logger.SetLevel(level)

	dialect, err := schema.DialectForDriver(c.Driver)
	if err != nil {
		return env, err
	}

	env.db, err = sql.Open(c.Driver, c.DSN)
	if err != nil {
		return env, fmt.Errorf("opening %s database: %w", c.Driver, err)
	}
	if err := env.db.PingContext(cmd.Context()); err != nil {
		_ = env.db.Close()
		return env, fmt.Errorf("connecting to %s database: %w", c.Driver, err)
	}

	env.migrator = schema.NewMigrator(
		schema.WithDialect(dialect),
		schema.WithSchemaName(c.SchemaName),
		schema.WithTableName(c.TableName),
		schema.WithContext(cmd.Context()),
		schema.WithLogger(env.logger),
	)
	env.logger.WithFields(logrus.Fields{
		"driver": c.Driver,
		"table":  env.migrator.QuotedTableName(),
	}).Debug("connected")
	return env, nil
}
