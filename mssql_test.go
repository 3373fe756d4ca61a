package schema

import (
	"testing"
)

// Interface verification that MSSQL is a valid Dialect
var (
	_ Dialect = MSSQL
)

func TestMSSQLDDL(t *testing.T) {
	tests := map[string]string{
		MSSQL.CreateTableSQL("container_env_vars", []Column{{"name", String}, {"value", Text}}): `CREATE TABLE [container_env_vars] ([id] BIGINT IDENTITY(1,1) PRIMARY KEY, [name] NVARCHAR(255), [value] NVARCHAR(MAX))`,
		MSSQL.AddColumnSQL("containers", Column{"privileged", Boolean}):                         `ALTER TABLE [containers] ADD [privileged] BIT`,
		MSSQL.RemoveColumnSQL("containers", "privileged"):                                      `ALTER TABLE [containers] DROP COLUMN [privileged]`,
		MSSQL.RenameColumnSQL("container_env_vars", "container_definition_id", "container_id"): `EXEC sp_rename 'container_env_vars.container_definition_id', 'container_id', 'COLUMN'`,
		MSSQL.RenameColumnSQL("o'brien", "a", "b"):                                             `EXEC sp_rename 'o''brien.a', 'b', 'COLUMN'`,
	}
	for actual, expected := range tests {
		if actual != expected {
			t.Errorf("Expected %s, got %s", expected, actual)
		}
	}
}
