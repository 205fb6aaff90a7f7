package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ModuleType classifies a library module. The type determines the library
// subdirectory the module lives in and how it participates in provisioning.
type ModuleType string

const (
	// TypeAdmin is an administrative add-on (query loggers, monitoring
	// agents, and similar coordinator-side extras).
	TypeAdmin ModuleType = "admin"

	// TypeCatalog adds a catalog backed by an auxiliary data-source
	// container (a database, object store, etc.).
	TypeCatalog ModuleType = "catalog"

	// TypeSecurity wires a security integration (LDAP, TLS, password
	// file, and similar backends).
	TypeSecurity ModuleType = "security"
)

// String returns the string representation of the module type.
func (t ModuleType) String() string {
	return string(t)
}

// IsValid checks whether the ModuleType is one of the known types.
func (t ModuleType) IsValid() bool {
	switch t {
	case TypeAdmin, TypeCatalog, TypeSecurity:
		return true
	default:
		return false
	}
}

// ParseModuleType converts a string into a ModuleType.
func ParseModuleType(s string) (ModuleType, error) {
	t := ModuleType(strings.ToLower(s))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid module type: %q (valid: admin, catalog, security)", s)
	}
	return t, nil
}

// DependentCluster describes an auxiliary cluster a module requires as a
// running companion before its own cluster can be provisioned.
type DependentCluster struct {
	// Name is the companion cluster's name as declared in the metadata.
	// The validator renames it with a disambiguating prefix before handing
	// it to the orchestrator.
	Name string `json:"name"`

	// Modules lists the modules the companion cluster should be
	// provisioned with.
	Modules []string `json:"modules,omitempty"`

	// Env carries extra environment overrides for the companion cluster.
	Env map[string]string `json:"env,omitempty"`
}

// ModuleMetadata is the read-only metadata record shipped with each library
// module (metadata.json). It is consumed as-is from the library; the CLI
// never writes it.
type ModuleMetadata struct {
	// Description is the human-readable summary shown by module listing.
	Description string `json:"description"`

	// Type is the module classification: admin, catalog, or security.
	Type ModuleType `json:"type"`

	// IncompatibleModules lists module names that cannot be provisioned
	// together with this module. The wildcard "*" marks a module
	// incompatible with every other module.
	IncompatibleModules []string `json:"incompatibleModules,omitempty"`

	// DependentModules lists module names that must be co-provisioned
	// whenever this module is selected.
	DependentModules []string `json:"dependentModules,omitempty"`

	// Versions is an optional [min] or [min, max] window of cluster
	// versions the module supports. More than two entries is a
	// configuration error surfaced by the validator.
	Versions []int `json:"versions,omitempty"`

	// DependentClusters lists companion clusters that must be provisioned
	// before this module's own cluster.
	DependentClusters []DependentCluster `json:"dependentClusters,omitempty"`

	// Enterprise marks modules that require the enterprise distribution.
	Enterprise bool `json:"enterprise"`
}

// Distribution names for version gating. The enterprise distribution
// requires a licensed version suffix in addition to the minimum version.
const (
	DistTrino     = "trino"
	DistStarburst = "starburst"
)

// clusterNameRegex validates cluster names: lowercase alphanumerics and
// hyphens, starting and ending with an alphanumeric.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// ValidateClusterName checks that a cluster name is usable as a container
// name component and an environment namespace.
func ValidateClusterName(name string) error {
	if name == "" {
		return fmt.Errorf("cluster name must not be empty")
	}
	if !clusterNameRegex.MatchString(name) {
		return fmt.Errorf("invalid cluster name %q: must contain only lowercase alphanumerics and hyphens, and start/end with an alphanumeric", name)
	}
	return nil
}
