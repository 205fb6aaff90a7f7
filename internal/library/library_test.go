package library

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

func testLog() *logging.Logger {
	var buf bytes.Buffer
	return logging.NewWithWriters(&buf, &buf, false)
}

// writeModule lays down one module directory under the library root.
func writeModule(t *testing.T, root string, moduleType, name, metadata, fragment string) string {
	t.Helper()
	dir := filepath.Join(root, "modules", moduleType, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(metadata), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(fragment), 0o644))
	return dir
}

func testLibrary(t *testing.T) *Library {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "modules"), 0o755))

	writeModule(t, root, "catalog", "postgres",
		`{
			// backing database for the postgres catalog
			"description": "Postgres catalog",
			"type": "catalog"
		}`,
		`services:
  postgres:
    image: postgres:16
    container_name: postgres
    ports:
      - "${PORT_POSTGRES}:5432"
`)

	writeModule(t, root, "security", "ldap",
		`{
			"description": "LDAP authentication",
			"type": "security",
			"enterprise": true,
			"incompatibleModules": ["password-file"]
		}`,
		`services:
  ldap:
    image: osixia/openldap
    container_name: ldap
`)

	writeModule(t, root, "security", "password-file",
		`{"description": "File-based authentication", "type": "security"}`,
		`services:
  password-file:
    image: alpine
`)

	writeModule(t, root, "admin", "insights",
		`{
			"description": "Query insights",
			"type": "admin",
			"dependentModules": ["postgres"]
		}`,
		`services:
  insights:
    image: alpine
`)

	lib, err := OpenAt(root, testLog())
	require.NoError(t, err)
	return lib
}

// TestOpenAt_MissingLibrary verifies a missing root is a user error with a
// hint, not a stack trace.
func TestOpenAt_MissingLibrary(t *testing.T) {
	_, err := OpenAt(filepath.Join(t.TempDir(), "nope"), testLog())
	require.Error(t, err)

	var userErr *model.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Hint, "LIB_PATH")
}

// TestModules verifies discovery finds every module across the three type
// directories, sorted by name, with JSONC metadata parsed.
func TestModules(t *testing.T) {
	lib := testLibrary(t)

	modules, err := lib.Modules()
	require.NoError(t, err)
	require.Len(t, modules, 4)

	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"insights", "ldap", "password-file", "postgres"}, names)

	var postgres Module
	for _, m := range modules {
		if m.Name == "postgres" {
			postgres = m
		}
	}
	assert.Equal(t, model.TypeCatalog, postgres.Type)
	assert.Equal(t, "Postgres catalog", postgres.Metadata.Description)
	require.Contains(t, postgres.Services, "postgres")
	assert.Equal(t, "postgres", postgres.Services["postgres"].ContainerName)
	assert.Equal(t, []string{"${PORT_POSTGRES}:5432"}, postgres.Services["postgres"].Ports)
}

// TestSelect_ExpandsDependentModules verifies dependentModules are pulled
// into the selection transitively.
func TestSelect_ExpandsDependentModules(t *testing.T) {
	lib := testLibrary(t)

	selected, err := lib.Select([]string{"insights"})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "insights", selected[0].Name)
	assert.Equal(t, "postgres", selected[1].Name)
}

// TestSelect_UnknownModule verifies an unknown name is a user error.
func TestSelect_UnknownModule(t *testing.T) {
	lib := testLibrary(t)

	_, err := lib.Select([]string{"kafka"})
	require.Error(t, err)

	var userErr *model.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "kafka")
}

// TestCheckIncompatibilities covers the declared-pair and wildcard cases.
func TestCheckIncompatibilities(t *testing.T) {
	lib := testLibrary(t)

	ldap, err := lib.Select([]string{"ldap"})
	require.NoError(t, err)
	require.NoError(t, CheckIncompatibilities(ldap))

	both, err := lib.Select([]string{"ldap", "password-file"})
	require.NoError(t, err)
	err = CheckIncompatibilities(both)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ldap")
	assert.Contains(t, err.Error(), "password-file")

	wildcard := []Module{
		{Name: "solo", Metadata: model.ModuleMetadata{IncompatibleModules: []string{"*"}}},
		{Name: "other"},
	}
	require.Error(t, CheckIncompatibilities(wildcard))
	require.NoError(t, CheckIncompatibilities(wildcard[:1]))
}

// TestCheckEnterprise verifies gating on the community distribution.
func TestCheckEnterprise(t *testing.T) {
	lib := testLibrary(t)
	selected, err := lib.Select([]string{"ldap"})
	require.NoError(t, err)

	require.NoError(t, CheckEnterprise(selected, model.DistStarburst))

	err = CheckEnterprise(selected, model.DistTrino)
	require.Error(t, err)
	var userErr *model.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Hint, "CLUSTER_DIST")
}

// TestVersion verifies the version file is read and absence degrades to
// "unknown".
func TestVersion(t *testing.T) {
	lib := testLibrary(t)
	assert.Equal(t, "unknown", lib.Version())

	require.NoError(t, os.WriteFile(filepath.Join(lib.Root, "version"), []byte("2.3.0\n"), 0o644))
	assert.Equal(t, "2.3.0", lib.Version())
}

// TestBootstrapPath verifies detection of an optional bootstrap script.
func TestBootstrapPath(t *testing.T) {
	lib := testLibrary(t)
	modules, err := lib.Select([]string{"postgres"})
	require.NoError(t, err)
	require.Len(t, modules, 1)

	assert.Empty(t, modules[0].BootstrapPath())

	script := filepath.Join(modules[0].Dir, "bootstrap.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))
	assert.Equal(t, script, modules[0].BootstrapPath())
}
