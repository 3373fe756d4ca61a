package migrations

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/kubeinventory/schema"
)

func init() {
	register("20170529142557", Up_20170529142557, Down_20170529142557)
}

// childReferenceTables hold a reference to a definition which becomes a
// reference to its container
var childReferenceTables = []string{ContainerPortConfigsTable, ContainerEnvVarsTable}

// Up_20170529142557 folds container_definitions into containers. Every
// definition attribute is copied onto the container which references it,
// then port configs, env vars and security contexts are repointed from the
// definition to that container before the definition table is dropped.
func Up_20170529142557(ctx context.Context, s *schema.Session) error {
	for _, column := range DefinitionAttributes {
		if err := s.AddColumn(ContainersTable, column); err != nil {
			return err
		}
	}

	err := s.SayWithTime("Copying over columns from container_definition to container", func() error {
		return copyDefinitionAttributes(s)
	})
	if err != nil {
		return err
	}

	for _, table := range childReferenceTables {
		msg := fmt.Sprintf("switch container_definition_id with container_id for %s", table)
		err := s.SayWithTime(msg, func() error {
			return repointChildren(s, table, "container_definition_id", ResourceContainerDefinition, ResourceContainer)
		})
		if err != nil {
			return err
		}
	}

	err = s.SayWithTime("switch container_definition_id with container_id for security_contexts", func() error {
		return repointSecurityContexts(s, ResourceContainerDefinition, ResourceContainer)
	})
	if err != nil {
		return err
	}

	for _, table := range childReferenceTables {
		if err := s.RenameColumn(table, "container_definition_id", "container_id"); err != nil {
			return err
		}
	}

	if err := s.RemoveColumn(ContainersTable, "container_definition_id"); err != nil {
		return err
	}
	return s.DropTable(ContainerDefinitionsTable)
}

// Down_20170529142557 splits a definition back out of every container.
// Definitions get new ids, and definitions no container referenced before
// the consolidation are not restored.
func Down_20170529142557(ctx context.Context, s *schema.Session) error {
	if err := s.CreateTable(ContainerDefinitionsTable, definitionColumns()...); err != nil {
		return err
	}
	if err := s.AddColumn(ContainersTable, schema.Column{Name: "container_definition_id", Type: schema.BigInt}); err != nil {
		return err
	}

	err := s.SayWithTime("splitting columns from container into container_definition", func() error {
		return splitDefinitions(s)
	})
	if err != nil {
		return err
	}

	for _, table := range childReferenceTables {
		msg := fmt.Sprintf("switch container_id with container_definition_id for %s", table)
		err := s.SayWithTime(msg, func() error {
			return repointChildren(s, table, "container_id", ResourceContainer, ResourceContainerDefinition)
		})
		if err != nil {
			return err
		}
	}

	err = s.SayWithTime("switch container_id with container_definition_id for security_contexts", func() error {
		return repointSecurityContexts(s, ResourceContainer, ResourceContainerDefinition)
	})
	if err != nil {
		return err
	}

	for _, table := range childReferenceTables {
		if err := s.RenameColumn(table, "container_id", "container_definition_id"); err != nil {
			return err
		}
	}

	for _, column := range DefinitionAttributes {
		if err := s.RemoveColumn(ContainersTable, column.Name); err != nil {
			return err
		}
	}
	return nil
}

// copyDefinitionAttributes sets each attribute of every container from the
// definition it references. Containers without a definition get NULL.
func copyDefinitionAttributes(s *schema.Session) error {
	for _, column := range DefinitionAttributes {
		lookup := sq.Select(qualified(ContainerDefinitionsTable, column.Name)).
			From(ContainerDefinitionsTable).
			Where(qualified(ContainerDefinitionsTable, "id") + " = " + qualified(ContainersTable, "container_definition_id"))
		_, err := s.Run(s.Builder().Update(ContainersTable).Set(column.Name, lookup))
		if err != nil {
			return err
		}
	}
	return nil
}

// repointChildren rewrites table.column from an id of kind from to the id
// of kind to belonging to the same container. References with no matching
// container become NULL.
func repointChildren(s *schema.Session, table, column string, from, to ResourceKind) error {
	fromKey, toKey, err := containerKeys(from, to)
	if err != nil {
		return err
	}
	lookup := sq.Select(qualified(ContainersTable, toKey)).
		From(ContainersTable).
		Where(qualified(ContainersTable, fromKey) + " = " + qualified(table, column))
	_, err = s.Run(s.Builder().Update(table).Set(column, lookup))
	return err
}

// repointSecurityContexts retags security contexts of kind from as kind to,
// looking the new resource_id up through containers. resource_id is
// assigned before resource_type since MySQL evaluates SET assignments left
// to right.
func repointSecurityContexts(s *schema.Session, from, to ResourceKind) error {
	fromKey, toKey, err := containerKeys(from, to)
	if err != nil {
		return err
	}
	lookup := sq.Select(qualified(ContainersTable, toKey)).
		From(ContainersTable).
		Where(qualified(ContainersTable, fromKey) + " = " + qualified(SecurityContextsTable, "resource_id")).
		Where(sq.Eq{qualified(SecurityContextsTable, "resource_type"): from.String()})
	_, err = s.Run(s.Builder().
		Update(SecurityContextsTable).
		Set("resource_id", lookup).
		Set("resource_type", to.String()).
		Where(sq.Eq{"resource_type": from.String()}))
	return err
}

func containerKeys(from, to ResourceKind) (fromKey, toKey string, err error) {
	if fromKey, err = containerKeyFor(from); err != nil {
		return "", "", err
	}
	if toKey, err = containerKeyFor(to); err != nil {
		return "", "", err
	}
	return fromKey, toKey, nil
}

// splitDefinitions creates one definition per container, copying the
// identity and attribute columns, and links the container to it. The ids
// are read up front since not every driver allows statements while a
// result set is open.
func splitDefinitions(s *schema.Session) error {
	ids, err := containerIDs(s)
	if err != nil {
		return err
	}

	columns := columnNames(definitionColumns())
	for _, id := range ids {
		definitionID, err := s.InsertReturningID(sq.
			Insert(ContainerDefinitionsTable).
			Columns(columns...).
			Select(sq.Select(columns...).From(ContainersTable).Where(sq.Eq{"id": id})))
		if err != nil {
			return fmt.Errorf("creating definition for container %d: %w", id, err)
		}

		_, err = s.Run(s.Builder().
			Update(ContainersTable).
			Set("container_definition_id", definitionID).
			Where(sq.Eq{"id": id}))
		if err != nil {
			return fmt.Errorf("linking container %d: %w", id, err)
		}
	}
	return nil
}

func containerIDs(s *schema.Session) (ids []int64, err error) {
	query, args, err := s.Builder().Select("id").From(ContainersTable).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
