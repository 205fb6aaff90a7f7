package port

import (
	"bytes"
	"context"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefflester/minitrino-sub001/internal/env"
	"github.com/jefflester/minitrino-sub001/internal/library"
	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// fakeInspector serves a fixed set of published host ports through the
// runtime API shape.
type fakeInspector struct {
	publishedPorts []string
}

func (f *fakeInspector) ContainerList(_ context.Context, _ container.ListOptions) ([]types.Container, error) {
	return []types.Container{{ID: "c1"}}, nil
}

func (f *fakeInspector) ContainerInspect(_ context.Context, _ string) (types.ContainerJSON, error) {
	ports := nat.PortMap{}
	for _, p := range f.publishedPorts {
		ports["8080/tcp"] = append(ports["8080/tcp"], nat.PortBinding{HostIP: "0.0.0.0", HostPort: p})
	}
	return types.ContainerJSON{
		NetworkSettings: &types.NetworkSettings{
			NetworkSettingsBase: types.NetworkSettingsBase{Ports: ports},
		},
	}, nil
}

func newTestManager(published []string, busy map[int]bool) (*Manager, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logging.NewWithWriters(&buf, &buf, true)
	m := NewManager(&fakeInspector{publishedPorts: published}, log)
	m.isAvailable = func(port int) bool { return !busy[port] }
	return m, &buf
}

func moduleWithPorts(name string, ports ...string) library.Module {
	return library.Module{
		Name: name,
		Services: map[string]library.Service{
			name: {ContainerName: name, Ports: ports},
		},
	}
}

func emptyEnv(t *testing.T) *env.Environment {
	t.Helper()
	e, err := env.Build()
	require.NoError(t, err)
	return e
}

// TestSetExternalPorts_DistinctDefaults verifies modules with distinct
// defaults each get their default and never collide.
func TestSetExternalPorts_DistinctDefaults(t *testing.T) {
	m, _ := newTestManager(nil, nil)
	e := emptyEnv(t)

	modules := []library.Module{
		moduleWithPorts("trino", "${PORT_TRINO}:8080"),
		moduleWithPorts("postgres", "${PORT_POSTGRES}:5432"),
	}
	require.NoError(t, m.SetExternalPorts(context.Background(), modules, e))

	assert.Equal(t, "8080", e.Get("PORT_TRINO", ""))
	assert.Equal(t, "5432", e.Get("PORT_POSTGRES", ""))
}

// TestSetExternalPorts_SharedDefault verifies two services sharing a
// default yield two distinct ports, the second at least default+1.
func TestSetExternalPorts_SharedDefault(t *testing.T) {
	m, buf := newTestManager(nil, nil)
	e := emptyEnv(t)

	modules := []library.Module{
		moduleWithPorts("alpha", "${PORT_ALPHA}:9000"),
		moduleWithPorts("beta", "${PORT_BETA}:9000"),
	}
	require.NoError(t, m.SetExternalPorts(context.Background(), modules, e))

	assert.Equal(t, "9000", e.Get("PORT_ALPHA", ""))
	assert.Equal(t, "9001", e.Get("PORT_BETA", ""))
	assert.Contains(t, buf.String(), "localhost:9001")
}

// TestSetExternalPorts_SkipsBusyAndPublished verifies both collision
// sources push the candidate upward.
func TestSetExternalPorts_SkipsBusyAndPublished(t *testing.T) {
	m, _ := newTestManager([]string{"8081"}, map[int]bool{8080: true})
	e := emptyEnv(t)

	modules := []library.Module{moduleWithPorts("trino", "${PORT_TRINO}:8080")}
	require.NoError(t, m.SetExternalPorts(context.Background(), modules, e))

	assert.Equal(t, "8082", e.Get("PORT_TRINO", ""))
}

// TestSetExternalPorts_RespectsOverride verifies a user-pinned variable is
// kept and its port is claimed against later assignments.
func TestSetExternalPorts_RespectsOverride(t *testing.T) {
	m, _ := newTestManager(nil, nil)
	e, err := env.Build(env.UserPairs([]string{"PORT_ALPHA=9000"}))
	require.NoError(t, err)

	modules := []library.Module{
		moduleWithPorts("alpha", "${PORT_ALPHA}:9000"),
		moduleWithPorts("beta", "${PORT_BETA}:9000"),
	}
	require.NoError(t, m.SetExternalPorts(context.Background(), modules, e))

	assert.Equal(t, "9000", e.Get("PORT_ALPHA", ""))
	assert.Equal(t, "cli", e.Source("PORT_ALPHA"))
	assert.Equal(t, "9001", e.Get("PORT_BETA", ""))
}

// TestSetExternalPorts_NonIntegerDefault verifies the configuration error
// names the offending module.
func TestSetExternalPorts_NonIntegerDefault(t *testing.T) {
	m, _ := newTestManager(nil, nil)
	e := emptyEnv(t)

	modules := []library.Module{moduleWithPorts("trino", "${PORT_TRINO}:http")}
	err := m.SetExternalPorts(context.Background(), modules, e)
	require.Error(t, err)

	var userErr *model.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "trino")
}

// TestSetExternalPorts_NonIntegerOverride verifies a bad pinned value is a
// user error naming its source.
func TestSetExternalPorts_NonIntegerOverride(t *testing.T) {
	m, _ := newTestManager(nil, nil)
	e, err := env.Build(env.UserPairs([]string{"PORT_TRINO=web"}))
	require.NoError(t, err)

	modules := []library.Module{moduleWithPorts("trino", "${PORT_TRINO}:8080")}
	err = m.SetExternalPorts(context.Background(), modules, e)
	require.Error(t, err)

	var userErr *model.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "cli")
}

// TestSetExternalPorts_Exhaustion verifies a fully occupied window yields
// an explicit system error instead of an endless scan.
func TestSetExternalPorts_Exhaustion(t *testing.T) {
	m, _ := newTestManager(nil, nil)
	m.isAvailable = func(int) bool { return false }
	e := emptyEnv(t)

	modules := []library.Module{moduleWithPorts("trino", "${PORT_TRINO}:8080")}
	err := m.SetExternalPorts(context.Background(), modules, e)
	require.Error(t, err)

	var sysErr *model.SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.Contains(t, sysErr.Message, "PORT_TRINO")
}

// TestSetExternalPorts_StaticMappingsIgnored verifies mappings without a
// host variable are left to compose.
func TestSetExternalPorts_StaticMappingsIgnored(t *testing.T) {
	m, _ := newTestManager(nil, nil)
	e := emptyEnv(t)

	modules := []library.Module{moduleWithPorts("trino", "8080:8080", "9090")}
	require.NoError(t, m.SetExternalPorts(context.Background(), modules, e))
	assert.False(t, e.Has("PORT_TRINO"))
}

// TestParseMapping covers the mapping shapes discovery can produce.
func TestParseMapping(t *testing.T) {
	variable, def, ok, err := parseMapping("m", "${PORT_X}:8080")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "PORT_X", variable)
	assert.Equal(t, 8080, def)

	variable, def, ok, err = parseMapping("m", "${PORT_X}:8080/tcp")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "PORT_X", variable)
	assert.Equal(t, 8080, def)

	_, _, ok, err = parseMapping("m", "8080:8080")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, _, err = parseMapping("m", "${PORT_X}:abc")
	require.Error(t, err)
}
