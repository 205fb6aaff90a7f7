package library

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jefflester/minitrino-sub001/internal/env"
	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

const (
	// modulesDirName is the subdirectory holding the module tree.
	modulesDirName = "modules"

	// versionFileName holds the library release version at the root.
	versionFileName = "version"

	// composeFileName is the base compose file the module fragments
	// extend.
	composeFileName = "docker-compose.yaml"
)

// Library provides access to one module library rooted at a directory on
// the host filesystem.
type Library struct {
	// Root is the absolute library root directory.
	Root string

	log *logging.Logger
}

// Open resolves the library root from the environment (LIB_PATH) and
// verifies the directory has the expected shape. A missing or malformed
// library is fatal: nothing downstream can run without it.
func Open(environment *env.Environment, log *logging.Logger) (*Library, error) {
	root := environment.Get(env.KeyLibPath, "")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, model.WrapSystemError(err, "failed to resolve home directory")
		}
		root = filepath.Join(home, ".minitrino", "lib")
	}

	return OpenAt(root, log)
}

// OpenAt opens the library at an explicit root directory.
func OpenAt(root string, log *logging.Logger) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, model.WrapSystemError(err, "failed to resolve library path %q", root)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, model.NewUserErrorHint(
			"install the library or point LIB_PATH at an existing one",
			"library directory not found: %s", abs,
		)
	}
	if _, err := os.Stat(filepath.Join(abs, modulesDirName)); err != nil {
		return nil, model.NewUserErrorHint(
			"the directory exists but has no modules/ subdirectory; check LIB_PATH",
			"invalid library at %s", abs,
		)
	}

	log.Debug("using library at %s", abs)
	return &Library{Root: abs, log: log}, nil
}

// Version reads the library's release version from the version file at the
// root. An absent file yields "unknown" rather than an error: the version
// is informational only.
func (l *Library) Version() string {
	data, err := os.ReadFile(filepath.Join(l.Root, versionFileName))
	if err != nil {
		return "unknown"
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "unknown"
	}
	return v
}

// ComposePath returns the path of the base compose file.
func (l *Library) ComposePath() string {
	return filepath.Join(l.Root, composeFileName)
}

// DefaultsPath returns the path of the root defaults file consumed by
// environment resolution.
func (l *Library) DefaultsPath() string {
	return filepath.Join(l.Root, env.DefaultsFileName)
}
