package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "CONTAINERSCHEMA"

// Config keys, also used as flag names
const (
	driverKey   = "driver"
	dsnKey      = "dsn"
	schemaKey   = "schema"
	tableKey    = "table"
	logLevelKey = "log_level"
)

type config struct {
	Driver     string
	DSN        string
	SchemaName string
	TableName  string
	LogLevel   string
}

// configManager binds persistent flags of the root command to environment
// variables, so every subcommand reads the same settings
type configManager struct {
	viper   *viper.Viper
	command *cobra.Command
}

func newConfigManager(command *cobra.Command) configManager {
	man := configManager{
		viper:   viper.New(),
		command: command,
	}
	man.addConfigString(driverKey, "postgres", "database/sql driver: postgres, mysql, sqlite3 or sqlserver")
	man.addConfigString(dsnKey, "", "Data source name passed to the driver")
	man.addConfigString(schemaKey, "", "Schema holding the migrations tracking table")
	man.addConfigString(tableKey, "schema_migrations", "Name of the migrations tracking table")
	man.addConfigString(logLevelKey, "info", "Log level: debug, info, warn or error")
	return man
}

func envNameFromConfigKey(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}

func (man configManager) addConfigString(key, defVal, usage string) {
	man.command.PersistentFlags().String(key, defVal, fmt.Sprintf("Env: %s\n\t\t%s", envNameFromConfigKey(key), usage))
	_ = man.viper.BindPFlag(key, man.command.PersistentFlags().Lookup(key))
	_ = man.viper.BindEnv(key, envNameFromConfigKey(key))
	man.viper.SetDefault(key, defVal)
}

func (man configManager) load() (config, error) {
	c := config{
		Driver:     man.viper.GetString(driverKey),
		DSN:        man.viper.GetString(dsnKey),
		SchemaName: man.viper.GetString(schemaKey),
		TableName:  man.viper.GetString(tableKey),
		LogLevel:   man.viper.GetString(logLevelKey),
	}
	if c.DSN == "" {
		return c, fmt.Errorf("a DSN is required: set --%s or %s", dsnKey, envNameFromConfigKey(dsnKey))
	}
	return c, nil
}
