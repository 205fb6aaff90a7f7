package library

import (
	"strings"

	"github.com/jefflester/minitrino-sub001/internal/model"
)

// incompatibleWildcard marks a module as incompatible with every other
// module.
const incompatibleWildcard = "*"

// CheckIncompatibilities rejects a selection containing modules that
// declare each other (or everything) incompatible. The check is
// symmetric: either side declaring the conflict is enough.
func CheckIncompatibilities(selected []Module) error {
	for _, m := range selected {
		for _, incompatible := range m.Metadata.IncompatibleModules {
			for _, other := range selected {
				if other.Name == m.Name {
					continue
				}
				if incompatible == incompatibleWildcard {
					return model.NewUserError(
						"module %q is incompatible with all other modules (selected: %s)",
						m.Name, joinNames(selected),
					)
				}
				if other.Name == incompatible {
					return model.NewUserError(
						"incompatible modules selected: %q cannot be provisioned with %q",
						m.Name, other.Name,
					)
				}
			}
		}
	}
	return nil
}

// CheckEnterprise rejects enterprise-only modules when the cluster runs the
// community distribution.
func CheckEnterprise(selected []Module, dist string) error {
	if dist == model.DistStarburst {
		return nil
	}
	for _, m := range selected {
		if m.Metadata.Enterprise {
			return model.NewUserErrorHint(
				"set CLUSTER_DIST=starburst to use enterprise modules",
				"module %q requires the enterprise distribution (current: %s)", m.Name, dist,
			)
		}
	}
	return nil
}

func joinNames(modules []Module) string {
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}
