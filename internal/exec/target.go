package exec

import "fmt"

// targetKind discriminates the execution target variant.
type targetKind int

const (
	kindHost targetKind = iota
	kindContainer
)

// Target selects where a command runs: on the host or inside a running
// container. It is a tagged variant constructed via Host or InContainer;
// the dispatcher switches on it exhaustively.
type Target struct {
	kind targetKind

	// containerID is the runtime identifier of the target container.
	containerID string

	// containerName is the human-readable name used in diagnostics.
	containerName string
}

// Host returns the host-subprocess target.
func Host() Target {
	return Target{kind: kindHost}
}

// InContainer returns a target executing inside the given container.
// The name is used in log lines and error messages.
func InContainer(containerID, containerName string) Target {
	return Target{kind: kindContainer, containerID: containerID, containerName: containerName}
}

// IsHost reports whether the target is the host.
func (t Target) IsHost() bool {
	return t.kind == kindHost
}

// String renders the target for diagnostics.
func (t Target) String() string {
	if t.kind == kindHost {
		return "host"
	}
	return fmt.Sprintf("container %q", t.containerName)
}
