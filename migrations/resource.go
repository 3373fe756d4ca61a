package migrations

import (
	"errors"
	"fmt"
)

// Table names touched by the container inventory migrations
const (
	ContainersTable           = "containers"
	ContainerDefinitionsTable = "container_definitions"
	ContainerPortConfigsTable = "container_port_configs"
	ContainerEnvVarsTable     = "container_env_vars"
	SecurityContextsTable     = "security_contexts"
)

// ErrUnknownResourceKind is returned for resource_type values with no
// table mapping
var ErrUnknownResourceKind = errors.New("unknown resource kind")

// ResourceKind is the type tag of a polymorphic reference, as stored in a
// resource_type column
type ResourceKind string

// Resource kinds which security contexts may point at
const (
	ResourceContainer           ResourceKind = "Container"
	ResourceContainerDefinition ResourceKind = "ContainerDefinition"
)

func (k ResourceKind) String() string {
	return string(k)
}

type resourceMapping struct {
	table string
	// containerKey is the column of containers holding this kind's id
	containerKey string
}

var resourceKinds = map[ResourceKind]resourceMapping{
	ResourceContainer:           {table: ContainersTable, containerKey: "id"},
	ResourceContainerDefinition: {table: ContainerDefinitionsTable, containerKey: "container_definition_id"},
}

// ParseResourceKind converts a stored resource_type value to a ResourceKind
func ParseResourceKind(s string) (ResourceKind, error) {
	kind := ResourceKind(s)
	if _, ok := resourceKinds[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownResourceKind, s)
	}
	return kind, nil
}

// TableFor returns the table holding the rows a kind refers to
func TableFor(kind ResourceKind) (string, error) {
	mapping, ok := resourceKinds[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownResourceKind, string(kind))
	}
	return mapping.table, nil
}

func containerKeyFor(kind ResourceKind) (string, error) {
	mapping, ok := resourceKinds[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownResourceKind, string(kind))
	}
	return mapping.containerKey, nil
}
