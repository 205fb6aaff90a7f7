package port

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/jefflester/minitrino-sub001/internal/env"
	"github.com/jefflester/minitrino-sub001/internal/library"
	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// scanWindow bounds the candidate scan above each default. A host with a
// thousand consecutive ports taken above the default is broken enough that
// an explicit error beats an unbounded crawl.
const scanWindow = 1000

// Manager assigns host ports to the services of a module selection.
type Manager struct {
	cli runtimeInspector
	log *logging.Logger

	// isAvailable probes one candidate port on the host. Tests substitute
	// a deterministic function.
	isAvailable func(port int) bool
}

// NewManager creates a Manager probing real host ports through cli.
func NewManager(cli runtimeInspector, log *logging.Logger) *Manager {
	return &Manager{
		cli:         cli,
		log:         log,
		isAvailable: NewScanner().IsAvailable,
	}
}

// SetExternalPorts assigns a host port to every "${VAR}:containerPort"
// mapping in the selected modules' compose fragments, publishing each
// result into the environment. Environment resolution must have fully
// completed before this runs; Publish rejects anything else.
//
// A variable already present in the environment is treated as a user
// override: its value is respected and only claimed so no later variable
// picks the same port.
func (m *Manager) SetExternalPorts(ctx context.Context, modules []library.Module, environment *env.Environment) error {
	published, err := publishedHostPorts(ctx, m.cli)
	if err != nil {
		return model.WrapSystemError(err, "failed to scan published ports")
	}

	// claimed tracks ports taken by earlier variables in this invocation,
	// which neither the bind probe nor the published scan can see.
	claimed := make(map[int]string)

	for _, module := range modules {
		for _, serviceName := range sortedServiceNames(module.Services) {
			for _, mapping := range module.Services[serviceName].Ports {
				if err := m.assign(module.Name, serviceName, mapping, environment, published, claimed); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// assign handles one port mapping from a compose fragment.
func (m *Manager) assign(moduleName, serviceName, mapping string, environment *env.Environment, published map[int]bool, claimed map[int]string) error {
	variable, defaultPort, ok, err := parseMapping(moduleName, mapping)
	if err != nil {
		return err
	}
	if !ok {
		// A static mapping with no host variable is compose's business.
		return nil
	}

	if environment.Has(variable) {
		override := environment.Get(variable, "")
		port, err := strconv.Atoi(override)
		if err != nil {
			return model.NewUserError(
				"%s must be an integer port, got %q (source: %s)",
				variable, override, environment.Source(variable),
			)
		}
		claimed[port] = variable
		m.log.Debug("%s pinned to %d by %s", variable, port, environment.Source(variable))
		return nil
	}

	for candidate := defaultPort; candidate <= defaultPort+scanWindow; candidate++ {
		if published[candidate] || claimed[candidate] != "" || !m.isAvailable(candidate) {
			continue
		}

		if err := environment.Publish(variable, strconv.Itoa(candidate)); err != nil {
			return err
		}
		claimed[candidate] = variable

		if candidate != defaultPort {
			m.log.Info("port %d is taken; %s service %q moved to %d", defaultPort, moduleName, serviceName, candidate)
		}
		m.log.Info("%s service %q available at localhost:%d", moduleName, serviceName, candidate)
		return nil
	}

	return model.NewSystemError(
		"no available host port for %s (%s service %q): scanned %d-%d",
		variable, moduleName, serviceName, defaultPort, defaultPort+scanWindow,
	)
}

// parseMapping splits a compose port mapping "${VAR}:containerPort" into
// the host variable name and the default port. Mappings without a host
// variable return ok=false; a variable with a non-integer default is a
// configuration error naming the module.
func parseMapping(moduleName, mapping string) (variable string, defaultPort int, ok bool, err error) {
	host, containerPart, found := strings.Cut(mapping, ":")
	if !found {
		return "", 0, false, nil
	}
	if !strings.HasPrefix(host, "${") || !strings.HasSuffix(host, "}") {
		return "", 0, false, nil
	}
	variable = strings.TrimSuffix(strings.TrimPrefix(host, "${"), "}")
	if variable == "" {
		return "", 0, false, nil
	}

	// Tolerate a protocol suffix ("8080/tcp").
	containerPort, _, _ := strings.Cut(containerPart, "/")
	defaultPort, convErr := strconv.Atoi(containerPort)
	if convErr != nil {
		return "", 0, false, model.NewUserError(
			"module %q declares a non-integer default port in mapping %q", moduleName, mapping,
		)
	}

	return variable, defaultPort, true, nil
}

func sortedServiceNames(services map[string]library.Service) []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
