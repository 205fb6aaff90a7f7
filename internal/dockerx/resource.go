package dockerx

import (
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
)

// Label keys persisted on every resource the CLI creates. Labels are the
// sole ownership marker — there is no external state file.
const (
	// LabelPrefix namespaces all CLI-owned labels.
	LabelPrefix = "minitrino."

	// LabelManagedBy identifies resources created by this CLI.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelCluster stores the owning cluster's name.
	LabelCluster = LabelPrefix + "cluster"

	// LabelModule stores the module a container belongs to, when the
	// container was brought up as part of a module's compose fragment.
	LabelModule = LabelPrefix + "module"
)

// ManagedByValue is the fixed value of LabelManagedBy.
const ManagedByValue = "minitrino"

// ResourceKind classifies a runtime resource.
type ResourceKind string

const (
	KindContainer ResourceKind = "container"
	KindVolume    ResourceKind = "volume"
	KindNetwork   ResourceKind = "network"
	KindImage     ResourceKind = "image"
)

// Resource is a uniform view over the runtime's container, volume, network
// and image objects. It holds the summary data copied out of the raw SDK
// type rather than inheriting from per-kind wrappers; per-kind constructors
// below do the mapping.
type Resource struct {
	// ID is the runtime identifier.
	ID string

	// Name is the human-readable name (container name without the API's
	// leading slash, volume name, network name, or first image tag).
	Name string

	// Kind classifies the resource.
	Kind ResourceKind

	// Labels is the full label set on the resource.
	Labels map[string]string

	// Status carries the runtime state where the kind has one
	// (containers: "running", "exited", ...). Empty otherwise.
	Status string
}

// ClusterName returns the owning cluster from the resource's labels, or ""
// for resources the CLI does not own.
func (r Resource) ClusterName() string {
	return r.Labels[LabelCluster]
}

// Module returns the owning module from the resource's labels, if any.
func (r Resource) Module() string {
	return r.Labels[LabelModule]
}

// FromContainer maps a container summary into a Resource. The API returns
// names with a leading "/" that is stripped for display.
func FromContainer(c types.Container) Resource {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	return Resource{
		ID:     c.ID,
		Name:   name,
		Kind:   KindContainer,
		Labels: c.Labels,
		Status: c.State,
	}
}

// FromVolume maps a volume into a Resource. Volumes are addressed by name;
// the name doubles as the ID.
func FromVolume(v *volume.Volume) Resource {
	return Resource{
		ID:     v.Name,
		Name:   v.Name,
		Kind:   KindVolume,
		Labels: v.Labels,
	}
}

// FromNetwork maps a network summary into a Resource.
func FromNetwork(n network.Summary) Resource {
	return Resource{
		ID:     n.ID,
		Name:   n.Name,
		Kind:   KindNetwork,
		Labels: n.Labels,
	}
}

// FromImage maps an image summary into a Resource, using the first repo
// tag as the display name when one exists.
func FromImage(i image.Summary) Resource {
	name := i.ID
	if len(i.RepoTags) > 0 {
		name = i.RepoTags[0]
	}
	return Resource{
		ID:     i.ID,
		Name:   name,
		Kind:   KindImage,
		Labels: i.Labels,
	}
}

// ClusterLabels builds the label set applied to every resource created for
// a cluster.
func ClusterLabels(clusterName string) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelCluster:   clusterName,
	}
}
