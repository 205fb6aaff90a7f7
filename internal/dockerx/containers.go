package dockerx

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"

	"github.com/jefflester/minitrino-sub001/internal/model"
)

// ContainerAPI is the slice of the runtime client the listing and batch
// operations need. *client.Client satisfies it; tests substitute fakes.
type ContainerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerStatsOneShot(ctx context.Context, containerID string) (container.StatsResponseReader, error)
	VolumeList(ctx context.Context, options volume.ListOptions) (volume.ListResponse, error)
	VolumeRemove(ctx context.Context, volumeID string, force bool) error
	NetworkList(ctx context.Context, options network.ListOptions) ([]network.Summary, error)
	NetworkRemove(ctx context.Context, networkID string) error
}

// clusterFilter builds the label filter selecting resources owned by the
// given cluster. An empty cluster name selects everything the CLI manages.
func clusterFilter(clusterName string) filters.Args {
	args := filters.NewArgs(filters.Arg("label", LabelManagedBy+"="+ManagedByValue))
	if clusterName != "" {
		args.Add("label", LabelCluster+"="+clusterName)
	}
	return args
}

// ListContainers returns the cluster's containers as Resources, stopped
// ones included — teardown and listing must see exited containers too.
func ListContainers(ctx context.Context, cli ContainerAPI, clusterName string) ([]Resource, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: clusterFilter(clusterName),
	})
	if err != nil {
		return nil, model.WrapSystemError(err, "failed to list containers")
	}

	resources := make([]Resource, 0, len(containers))
	for _, c := range containers {
		resources = append(resources, FromContainer(c))
	}
	return resources, nil
}

// ListVolumes returns the cluster's volumes as Resources.
func ListVolumes(ctx context.Context, cli ContainerAPI, clusterName string) ([]Resource, error) {
	resp, err := cli.VolumeList(ctx, volume.ListOptions{Filters: clusterFilter(clusterName)})
	if err != nil {
		return nil, model.WrapSystemError(err, "failed to list volumes")
	}

	resources := make([]Resource, 0, len(resp.Volumes))
	for _, v := range resp.Volumes {
		resources = append(resources, FromVolume(v))
	}
	return resources, nil
}

// ListNetworks returns the cluster's networks as Resources.
func ListNetworks(ctx context.Context, cli ContainerAPI, clusterName string) ([]Resource, error) {
	networks, err := cli.NetworkList(ctx, network.ListOptions{Filters: clusterFilter(clusterName)})
	if err != nil {
		return nil, model.WrapSystemError(err, "failed to list networks")
	}

	resources := make([]Resource, 0, len(networks))
	for _, n := range networks {
		resources = append(resources, FromNetwork(n))
	}
	return resources, nil
}

// GroupByCluster groups resources by their owning cluster label. Resources
// without the label are skipped; ListContainers already filters for
// managed resources, so this only drops mislabelled strays.
func GroupByCluster(resources []Resource) map[string][]Resource {
	groups := make(map[string][]Resource)
	for _, r := range resources {
		name := r.ClusterName()
		if name == "" {
			continue
		}
		groups[name] = append(groups[name], r)
	}
	return groups
}

// StartContainer starts a stopped container by ID.
func StartContainer(ctx context.Context, cli ContainerAPI, containerID string) error {
	if err := cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return model.WrapSystemError(err, "failed to start container %q", containerID)
	}
	return nil
}

// StopContainer stops a running container by ID, using the daemon's
// default grace period before the kill.
func StopContainer(ctx context.Context, cli ContainerAPI, containerID string) error {
	if err := cli.ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return model.WrapSystemError(err, "failed to stop container %q", containerID)
	}
	return nil
}

// RemoveContainer removes a container by ID. With force, a running
// container is killed first.
func RemoveContainer(ctx context.Context, cli ContainerAPI, containerID string, force bool) error {
	if err := cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: force}); err != nil {
		return model.WrapSystemError(err, "failed to remove container %q", containerID)
	}
	return nil
}
