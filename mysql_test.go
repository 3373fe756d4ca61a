package schema

import (
	"testing"
)

// Interface verification that MySQL is a valid Dialect
var (
	_ Dialect = MySQL
	_ Locker  = MySQL
)

func TestMySQLDDL(t *testing.T) {
	tests := map[string]string{
		MySQL.CreateTableSQL("security_contexts", []Column{{"resource_type", String}, {"resource_id", BigInt}}): "CREATE TABLE `security_contexts` (`id` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, `resource_type` VARCHAR(255), `resource_id` BIGINT)",
		MySQL.AddColumnSQL("containers", Column{"run_as_non_root", Boolean}):                                   "ALTER TABLE `containers` ADD COLUMN `run_as_non_root` TINYINT(1)",
		MySQL.AddColumnSQL("containers", Column{"cpu_cores", Float}):                                           "ALTER TABLE `containers` ADD COLUMN `cpu_cores` DOUBLE",
		MySQL.RemoveColumnSQL("containers", "image"):                                                           "ALTER TABLE `containers` DROP COLUMN `image`",
		MySQL.RenameColumnSQL("container_port_configs", "container_id", "container_definition_id"):             "ALTER TABLE `container_port_configs` RENAME COLUMN `container_id` TO `container_definition_id`",
		MySQL.DropTableSQL("container_definitions"):                                                            "DROP TABLE `container_definitions`",
	}
	for actual, expected := range tests {
		if actual != expected {
			t.Errorf("Expected %s, got %s", expected, actual)
		}
	}
}
