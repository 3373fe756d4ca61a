package migrations

import (
	"context"

	"github.com/kubeinventory/schema"
)

func init() {
	register("20170101000000", Up_20170101000000, Down_20170101000000)
}

var baselineTables = []struct {
	name    string
	columns []schema.Column
}{
	{ContainerDefinitionsTable, definitionColumns()},
	{ContainersTable, append(append([]schema.Column{}, DefinitionIdentity...),
		schema.Column{Name: "container_definition_id", Type: schema.BigInt},
	)},
	{ContainerPortConfigsTable, []schema.Column{
		{Name: "container_definition_id", Type: schema.BigInt},
		{Name: "ems_ref", Type: schema.String},
		{Name: "port", Type: schema.BigInt},
		{Name: "host_port", Type: schema.BigInt},
		{Name: "protocol", Type: schema.String},
		{Name: "name", Type: schema.String},
	}},
	{ContainerEnvVarsTable, []schema.Column{
		{Name: "container_definition_id", Type: schema.BigInt},
		{Name: "name", Type: schema.String},
		{Name: "value", Type: schema.Text},
		{Name: "field_path", Type: schema.String},
	}},
	{SecurityContextsTable, []schema.Column{
		{Name: "resource_type", Type: schema.String},
		{Name: "resource_id", Type: schema.BigInt},
		{Name: "se_linux_level", Type: schema.String},
		{Name: "se_linux_user", Type: schema.String},
		{Name: "se_linux_role", Type: schema.String},
		{Name: "se_linux_type", Type: schema.String},
		{Name: "run_as_user", Type: schema.BigInt},
		{Name: "run_as_non_root", Type: schema.Boolean},
	}},
}

// Up_20170101000000 creates the container inventory tables with
// container_definitions still separate from containers
func Up_20170101000000(ctx context.Context, s *schema.Session) error {
	for _, table := range baselineTables {
		if err := s.CreateTable(table.name, table.columns...); err != nil {
			return err
		}
	}
	return nil
}

func Down_20170101000000(ctx context.Context, s *schema.Session) error {
	for i := len(baselineTables) - 1; i >= 0; i-- {
		if err := s.DropTable(baselineTables[i].name); err != nil {
			return err
		}
	}
	return nil
}
