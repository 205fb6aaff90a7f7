package dockerx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefflester/minitrino-sub001/internal/logging"
)

// fakeAPI implements ContainerAPI against in-memory state.
type fakeAPI struct {
	mu         sync.Mutex
	containers []types.Container

	stopped []string
	removed []string

	// failIDs makes stop/remove/stats fail for the listed container IDs.
	failIDs map[string]bool

	statsBody string
}

func (f *fakeAPI) ContainerList(_ context.Context, _ container.ListOptions) ([]types.Container, error) {
	return f.containers, nil
}

func (f *fakeAPI) ContainerInspect(_ context.Context, _ string) (types.ContainerJSON, error) {
	return types.ContainerJSON{}, nil
}

func (f *fakeAPI) ContainerStart(_ context.Context, _ string, _ container.StartOptions) error {
	return nil
}

func (f *fakeAPI) ContainerStop(_ context.Context, id string, _ container.StopOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return errors.New("stop failed")
	}
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeAPI) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return errors.New("remove failed")
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeAPI) ContainerStatsOneShot(_ context.Context, id string) (container.StatsResponseReader, error) {
	if f.failIDs[id] {
		return container.StatsResponseReader{}, errors.New("stats failed")
	}
	return container.StatsResponseReader{
		Body: io.NopCloser(strings.NewReader(f.statsBody)),
	}, nil
}

func (f *fakeAPI) VolumeList(_ context.Context, _ volume.ListOptions) (volume.ListResponse, error) {
	return volume.ListResponse{}, nil
}

func (f *fakeAPI) VolumeRemove(_ context.Context, _ string, _ bool) error { return nil }

func (f *fakeAPI) NetworkList(_ context.Context, _ network.ListOptions) ([]network.Summary, error) {
	return nil, nil
}

func (f *fakeAPI) NetworkRemove(_ context.Context, _ string) error { return nil }

func testLog() (*logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewWithWriters(&buf, &buf, false), &buf
}

func clusterContainers(n int, cluster string) ([]types.Container, []Resource) {
	raw := make([]types.Container, 0, n)
	resources := make([]Resource, 0, n)
	for i := 0; i < n; i++ {
		c := types.Container{
			ID:    fmt.Sprintf("id-%d", i),
			Names: []string{fmt.Sprintf("/%s-svc-%d", cluster, i)},
			State: "running",
			Labels: map[string]string{
				LabelManagedBy: ManagedByValue,
				LabelCluster:   cluster,
			},
		}
		raw = append(raw, c)
		resources = append(resources, FromContainer(c))
	}
	return raw, resources
}

// TestFromContainer verifies name stripping and label-derived fields.
func TestFromContainer(t *testing.T) {
	r := FromContainer(types.Container{
		ID:    "abc",
		Names: []string{"/trino-coordinator"},
		State: "running",
		Labels: map[string]string{
			LabelCluster: "dev",
			LabelModule:  "postgres",
		},
	})

	assert.Equal(t, "trino-coordinator", r.Name)
	assert.Equal(t, KindContainer, r.Kind)
	assert.Equal(t, "dev", r.ClusterName())
	assert.Equal(t, "postgres", r.Module())
	assert.Equal(t, "running", r.Status)
}

// TestGroupByCluster verifies grouping and that unlabelled strays are
// skipped.
func TestGroupByCluster(t *testing.T) {
	_, a := clusterContainers(2, "alpha")
	_, b := clusterContainers(1, "beta")
	stray := Resource{ID: "x", Name: "stray", Kind: KindContainer, Labels: map[string]string{}}

	groups := GroupByCluster(append(append(a, b...), stray))
	assert.Len(t, groups, 2)
	assert.Len(t, groups["alpha"], 2)
	assert.Len(t, groups["beta"], 1)
}

// TestStopAll_IsolatesFailures verifies one container's failure is logged
// and does not abort the remaining batch.
func TestStopAll_IsolatesFailures(t *testing.T) {
	raw, resources := clusterContainers(4, "dev")
	api := &fakeAPI{containers: raw, failIDs: map[string]bool{"id-1": true}}
	log, buf := testLog()

	stopped, err := StopAll(context.Background(), api, log, resources)
	require.NoError(t, err)

	assert.Equal(t, 3, stopped)
	assert.Len(t, api.stopped, 3)
	assert.NotContains(t, api.stopped, "id-1")
	assert.Contains(t, buf.String(), "[w]")
	assert.Contains(t, buf.String(), "dev-svc-1")
}

// TestRemoveAll verifies parallel removal covers the full batch.
func TestRemoveAll(t *testing.T) {
	raw, resources := clusterContainers(10, "dev")
	api := &fakeAPI{containers: raw}
	log, _ := testLog()

	removed, err := RemoveAll(context.Background(), api, log, resources, true)
	require.NoError(t, err)
	assert.Equal(t, 10, removed)
	assert.Len(t, api.removed, 10)
}

// TestCollectStats verifies per-item isolation and order preservation: the
// failed container's entry carries its error while others carry samples.
func TestCollectStats(t *testing.T) {
	raw, resources := clusterContainers(3, "dev")
	api := &fakeAPI{
		containers: raw,
		failIDs:    map[string]bool{"id-2": true},
		statsBody: `{
			"cpu_stats": {"cpu_usage": {"total_usage": 200}, "system_cpu_usage": 2000, "online_cpus": 2},
			"precpu_stats": {"cpu_usage": {"total_usage": 100}, "system_cpu_usage": 1000},
			"memory_stats": {"usage": 1048576, "limit": 4194304}
		}`,
	}
	log, buf := testLog()

	stats, err := CollectStats(context.Background(), api, log, resources)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "dev-svc-0", stats[0].ContainerName)
	assert.NoError(t, stats[0].Err)
	assert.Equal(t, uint64(1048576), stats[0].MemoryUsage)
	assert.InDelta(t, 20.0, stats[0].CPUPercent, 0.01)

	assert.Error(t, stats[2].Err)
	assert.Contains(t, buf.String(), "dev-svc-2")
}

// TestListContainers verifies SDK summaries are mapped to Resources.
func TestListContainers(t *testing.T) {
	raw, _ := clusterContainers(2, "dev")
	api := &fakeAPI{containers: raw}

	resources, err := ListContainers(context.Background(), api, "dev")
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "dev-svc-0", resources[0].Name)
}
