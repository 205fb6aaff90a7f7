package port

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
)

// Scanner checks whether host ports are available for binding. It asks the
// OS directly via net.Listen rather than parsing /proc/net/* or shelling
// out to lsof/ss, which may need elevated permissions.
type Scanner struct {
	// bindAddr is the address probed. Services are published on the
	// loopback interface, so that is the address space checked.
	bindAddr string
}

// NewScanner creates a Scanner probing the loopback interface.
func NewScanner() *Scanner {
	return &Scanner{bindAddr: "127.0.0.1"}
}

// IsAvailable reports whether a TCP bind to the port succeeds. The test
// listener is closed immediately; only availability matters.
func (s *Scanner) IsAvailable(port int) bool {
	listener, err := net.Listen("tcp", net.JoinHostPort(s.bindAddr, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// runtimeInspector is the slice of the runtime client the published-port
// scan needs. The SDK client satisfies it; tests substitute fakes.
type runtimeInspector interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
}

// publishedHostPorts collects every host port currently published by a
// running container, read from each container's network attributes. The
// set covers all containers on the host, not just cluster-owned ones —
// a foreign container on the port is just as much a collision.
func publishedHostPorts(ctx context.Context, cli runtimeInspector) (map[int]bool, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list running containers: %w", err)
	}

	published := make(map[int]bool)
	for _, c := range containers {
		inspect, err := cli.ContainerInspect(ctx, c.ID)
		if err != nil {
			// The container may have exited between list and inspect.
			continue
		}
		if inspect.NetworkSettings == nil {
			continue
		}
		for _, bindings := range inspect.NetworkSettings.Ports {
			for _, binding := range bindings {
				hostPort, err := strconv.Atoi(binding.HostPort)
				if err != nil {
					continue
				}
				published[hostPort] = true
			}
		}
	}
	return published, nil
}
