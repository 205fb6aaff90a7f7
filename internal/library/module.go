package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/jefflester/minitrino-sub001/internal/model"
)

const (
	metadataFileName  = "metadata.json"
	bootstrapFileName = "bootstrap.sh"
)

// Service is one service entry from a module's compose fragment. Only the
// fields the CLI acts on are kept; everything else in the fragment is left
// for compose itself.
type Service struct {
	// ContainerName is the fixed container name, when the fragment pins
	// one. Empty means compose generates the name.
	ContainerName string

	// Ports holds the fragment's port mappings verbatim, typically
	// "${PORT_VAR}:containerPort".
	Ports []string
}

// Module is one discovered library module: a compose fragment, its
// metadata, and an optional bootstrap script.
type Module struct {
	// Name is the module's directory name, which is also how users select
	// it on the command line.
	Name string

	// Type is the library subdirectory the module was found under.
	Type model.ModuleType

	// Metadata is the parsed metadata.json record.
	Metadata model.ModuleMetadata

	// Dir is the module's directory.
	Dir string

	// ComposePath is the module's compose fragment (<name>.yaml).
	ComposePath string

	// Services maps service name to the fields extracted from the
	// fragment.
	Services map[string]Service
}

// BootstrapPath returns the path of the module's bootstrap script, or ""
// when the module ships none.
func (m Module) BootstrapPath() string {
	path := filepath.Join(m.Dir, bootstrapFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// composeFragment is the subset of a compose file the CLI reads.
type composeFragment struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	ContainerName string   `yaml:"container_name"`
	Ports         []string `yaml:"ports"`
}

// Modules discovers every module under <lib>/modules, sorted by name. A
// directory missing its metadata or fragment is a library defect and fails
// discovery; users cannot fix a half-shipped module from the CLI.
func (l *Library) Modules() ([]Module, error) {
	var modules []Module

	for _, moduleType := range []model.ModuleType{model.TypeAdmin, model.TypeCatalog, model.TypeSecurity} {
		typeDir := filepath.Join(l.Root, modulesDirName, moduleType.String())
		entries, err := os.ReadDir(typeDir)
		if os.IsNotExist(err) {
			// A library may legitimately ship no modules of a type.
			continue
		}
		if err != nil {
			return nil, model.WrapSystemError(err, "failed to read library directory %q", typeDir)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			module, err := l.loadModule(moduleType, filepath.Join(typeDir, entry.Name()))
			if err != nil {
				return nil, err
			}
			modules = append(modules, module)
		}
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules, nil
}

// Select resolves the named modules against the discovered set, expanding
// each module's dependentModules transitively. An unknown name is a user
// error listing what the library actually offers.
func (l *Library) Select(names []string) ([]Module, error) {
	all, err := l.Modules()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Module, len(all))
	for _, m := range all {
		byName[m.Name] = m
	}

	var selected []Module
	seen := make(map[string]bool)

	var add func(name string) error
	add = func(name string) error {
		if seen[name] {
			return nil
		}
		m, ok := byName[name]
		if !ok {
			return model.NewUserErrorHint(
				"run 'minitrino modules' to list available modules",
				"module %q does not exist in the library", name,
			)
		}
		seen[name] = true
		selected = append(selected, m)
		for _, dep := range m.Metadata.DependentModules {
			if err := add(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range names {
		if err := add(name); err != nil {
			return nil, err
		}
	}
	return selected, nil
}

// loadModule parses one module directory: metadata.json (JSONC) and the
// <name>.yaml compose fragment.
func (l *Library) loadModule(moduleType model.ModuleType, dir string) (Module, error) {
	name := filepath.Base(dir)

	metadataPath := filepath.Join(dir, metadataFileName)
	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return Module{}, model.NewUserErrorHint(
			"reinstall the library; every module must ship a metadata.json",
			"module %q has no metadata file at %s", name, metadataPath,
		)
	}

	var metadata model.ModuleMetadata
	if err := json.Unmarshal(jsonc.ToJSON(data), &metadata); err != nil {
		return Module{}, model.WrapSystemError(err, "failed to parse %s", metadataPath)
	}
	if metadata.Type == "" {
		metadata.Type = moduleType
	}
	if metadata.Type != moduleType {
		return Module{}, model.NewUserError(
			"module %q declares type %q but lives under %s/", name, metadata.Type, moduleType,
		)
	}

	composePath := filepath.Join(dir, name+".yaml")
	services, err := parseFragment(composePath)
	if err != nil {
		return Module{}, err
	}

	return Module{
		Name:        name,
		Type:        moduleType,
		Metadata:    metadata,
		Dir:         dir,
		ComposePath: composePath,
		Services:    services,
	}, nil
}

// parseFragment reads the service listing from a module's compose fragment.
func parseFragment(path string) (map[string]Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewUserErrorHint(
			"reinstall the library; every module must ship a compose fragment",
			"compose fragment not found at %s", path,
		)
	}

	var fragment composeFragment
	if err := yaml.Unmarshal(data, &fragment); err != nil {
		return nil, model.WrapSystemError(err, "failed to parse compose fragment %s", path)
	}

	services := make(map[string]Service, len(fragment.Services))
	for serviceName, svc := range fragment.Services {
		services[serviceName] = Service{
			ContainerName: svc.ContainerName,
			Ports:         svc.Ports,
		}
	}
	return services, nil
}
