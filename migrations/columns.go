package migrations

import (
	"github.com/kubeinventory/schema"
)

// DefinitionAttributes are the configuration columns which move from
// container_definitions to containers, with their original types
var DefinitionAttributes = []schema.Column{
	{Name: "image", Type: schema.String},
	{Name: "image_pull_policy", Type: schema.String},
	{Name: "memory", Type: schema.String},
	{Name: "cpu_cores", Type: schema.Float},
	{Name: "container_group_id", Type: schema.BigInt},
	{Name: "privileged", Type: schema.Boolean},
	{Name: "run_as_user", Type: schema.BigInt},
	{Name: "run_as_non_root", Type: schema.Boolean},
	{Name: "capabilities_add", Type: schema.String},
	{Name: "capabilities_drop", Type: schema.String},
	{Name: "command", Type: schema.Text},
}

// DefinitionIdentity are the identity and audit columns shared by
// containers and container_definitions. They are copied alongside the
// attributes when definitions are rebuilt from containers.
var DefinitionIdentity = []schema.Column{
	{Name: "ems_id", Type: schema.BigInt},
	{Name: "ems_ref", Type: schema.String},
	{Name: "old_ems_id", Type: schema.BigInt},
	{Name: "deleted_on", Type: schema.Timestamp},
	{Name: "name", Type: schema.String},
}

// definitionColumns is the full column set of container_definitions, in
// table order
func definitionColumns() []schema.Column {
	columns := make([]schema.Column, 0, len(DefinitionIdentity)+len(DefinitionAttributes))
	columns = append(columns, DefinitionIdentity...)
	return append(columns, DefinitionAttributes...)
}

func columnNames(columns []schema.Column) []string {
	names := make([]string, len(columns))
	for i, column := range columns {
		names[i] = column.Name
	}
	return names
}

// qualified prefixes a column with its table, for use in correlated
// subqueries
func qualified(table, column string) string {
	return table + "." + column
}
