package cluster

import (
	"fmt"
	"strings"

	"github.com/jefflester/minitrino-sub001/internal/env"
	"github.com/jefflester/minitrino-sub001/internal/library"
)

// composeCommand builds the docker compose command line for a cluster: the
// library's base file first, then one -f per selected module fragment, so
// fragments override the base the way compose merging resolves it.
func composeCommand(projectName, basePath string, modules []library.Module, args ...string) string {
	var b strings.Builder
	b.WriteString("docker compose")
	fmt.Fprintf(&b, " -p %q", projectName)
	fmt.Fprintf(&b, " -f %q", basePath)
	for _, m := range modules {
		fmt.Fprintf(&b, " -f %q", m.ComposePath)
	}
	for _, arg := range args {
		b.WriteString(" " + arg)
	}
	return b.String()
}

// envSlice flattens the resolved environment for subprocess injection.
func envSlice(environment *env.Environment) []string {
	pairs := environment.Snapshot()
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.Key+"="+p.Value)
	}
	return out
}
