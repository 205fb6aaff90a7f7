package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// Well-known environment variable names.
const (
	// KeyClusterName names the cluster an invocation operates on.
	KeyClusterName = "CLUSTER_NAME"

	// KeyClusterDist selects the engine distribution (trino, starburst).
	KeyClusterDist = "CLUSTER_DIST"

	// KeyClusterVer selects the engine version.
	KeyClusterVer = "CLUSTER_VER"

	// KeyDockerHost overrides container runtime socket detection.
	KeyDockerHost = "DOCKER_HOST"

	// KeyLibPath points at the module library root.
	KeyLibPath = "LIB_PATH"

	// KeyTextEditor selects the editor for config editing commands.
	KeyTextEditor = "TEXT_EDITOR"

	// PortPrefix marks host-port variables. Any shell variable with this
	// prefix is copied into the environment, and port assignment publishes
	// its results under it.
	PortPrefix = "PORT_"
)

// shellAllowList is the fixed set of shell variables copied by the shell
// provider. Everything else in the caller's environment is ignored so that
// unrelated shell state cannot leak into cluster configuration.
var shellAllowList = []string{
	KeyClusterName,
	KeyClusterDist,
	KeyClusterVer,
	KeyDockerHost,
	KeyLibPath,
	KeyTextEditor,
}

// UserPairs is the highest-precedence provider: repeated --env KEY=VALUE
// flags, in flag order. A malformed pair fails resolution with a user error.
func UserPairs(raw []string) Provider {
	return Provider{
		Name: "cli",
		Pairs: func() ([]Pair, error) {
			pairs := make([]Pair, 0, len(raw))
			for _, s := range raw {
				p, err := ParsePair(s)
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, p)
			}
			return pairs, nil
		},
	}
}

// ShellEnv copies the allow-listed shell variables plus any variable with
// the reserved port prefix. The environ parameter follows os.Environ's
// "KEY=VALUE" shape; pass nil to read the real process environment.
func ShellEnv(environ func() []string) Provider {
	if environ == nil {
		environ = os.Environ
	}
	return Provider{
		Name: "shell",
		Pairs: func() ([]Pair, error) {
			allowed := make(map[string]bool, len(shellAllowList))
			for _, key := range shellAllowList {
				allowed[key] = true
			}

			var pairs []Pair
			for _, entry := range environ() {
				key, value, found := strings.Cut(entry, "=")
				if !found {
					continue
				}
				if allowed[key] || strings.HasPrefix(key, PortPrefix) {
					pairs = append(pairs, Pair{Key: key, Value: value})
				}
			}
			return pairs, nil
		},
	}
}

// Static wraps already-evaluated pairs as a Provider. It lets a source
// contribute to more than one Build without re-running its side effects,
// such as the malformed-config warning below.
func Static(name string, pairs []Pair) Provider {
	return Provider{
		Name:  name,
		Pairs: func() ([]Pair, error) { return pairs, nil },
	}
}

// ConfigFile reads the [config] section of the INI-style user config file.
// A missing file contributes nothing; a malformed file degrades to a
// warning and is skipped — the config file is never fatal.
func ConfigFile(path string, log *logging.Logger) Provider {
	return Provider{
		Name: "config-file",
		Pairs: func() ([]Pair, error) {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return nil, nil
			}

			v := viper.New()
			v.SetConfigFile(path)
			v.SetConfigType("ini")
			if err := v.ReadInConfig(); err != nil {
				log.Warn("skipping malformed config file %s: %v", path, err)
				return nil, nil
			}

			section := v.GetStringMapString("config")
			if len(section) == 0 {
				return nil, nil
			}

			// Viper returns an unordered map; sort for a stable merge order.
			keys := make([]string, 0, len(section))
			for key := range section {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			pairs := make([]Pair, 0, len(keys))
			for _, key := range keys {
				pairs = append(pairs, Pair{Key: strings.ToUpper(key), Value: section[key]})
			}
			return pairs, nil
		},
	}
}

// DefaultsFileName is the flat KEY=VALUE defaults file at the library root.
const DefaultsFileName = "minitrino.env"

// LibraryDefaults reads the defaults file shipped with the module library.
// It is the lowest-precedence source and the one fatal condition in the
// chain: a missing library root means the library is not installed.
func LibraryDefaults(libDir string) Provider {
	return Provider{
		Name: "library",
		Pairs: func() ([]Pair, error) {
			if _, err := os.Stat(libDir); err != nil {
				return nil, model.NewUserErrorHint(
					"install the library with 'minitrino lib-install' or point LIB_PATH at an existing copy",
					"module library not found at %q", libDir,
				)
			}

			path := filepath.Join(libDir, DefaultsFileName)
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, model.NewUserErrorHint(
					"reinstall the library with 'minitrino lib-install'",
					"library defaults file not found at %q", path,
				)
			}

			return parseDefaultsFile(content, path)
		},
	}
}

// parseDefaultsFile parses the flat KEY=VALUE defaults file. Blank lines
// and #-comments are skipped; an optional "export " prefix is tolerated so
// the file can also be sourced from a shell.
func parseDefaultsFile(content []byte, filename string) ([]Pair, error) {
	var pairs []Pair
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		p, err := ParsePair(line)
		if err != nil {
			return nil, model.NewUserError("%s:%d: %v", filename, i+1, fmt.Errorf("invalid line %q", line))
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
