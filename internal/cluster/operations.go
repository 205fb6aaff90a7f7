package cluster

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/jefflester/minitrino-sub001/internal/dockerx"
	"github.com/jefflester/minitrino-sub001/internal/env"
	"github.com/jefflester/minitrino-sub001/internal/exec"
	"github.com/jefflester/minitrino-sub001/internal/library"
	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
	"github.com/jefflester/minitrino-sub001/internal/port"
	"github.com/jefflester/minitrino-sub001/internal/validate"
)

// runner is the slice of the executor the operations use. *exec.Executor
// satisfies it; tests substitute a recorder.
type runner interface {
	Run(ctx context.Context, target exec.Target, opts exec.Options, commands ...string) ([]exec.Result, error)
	Stream(ctx context.Context, target exec.Target, opts exec.Options, command string, fn func(line string)) (exec.Result, error)
}

// Operations performs the lifecycle commands for one cluster. It is owned
// by a single command invocation, like the environment it carries.
type Operations struct {
	// Name is the cluster name, used as the compose project name and the
	// ownership label value.
	Name string

	Env   *env.Environment
	Exec  runner
	API   dockerx.ContainerAPI
	Lib   *library.Library
	Ports *port.Manager
	Log   *logging.Logger
}

// New wires an Operations for the named cluster.
func New(name string, environment *env.Environment, executor *exec.Executor, api dockerx.ContainerAPI, lib *library.Library, ports *port.Manager, log *logging.Logger) (*Operations, error) {
	if err := model.ValidateClusterName(name); err != nil {
		return nil, model.NewUserError("%v", err)
	}
	return &Operations{
		Name:  name,
		Env:   environment,
		Exec:  executor,
		API:   api,
		Lib:   lib,
		Ports: ports,
		Log:   log,
	}, nil
}

// Provision brings up the cluster with the given module selection:
// validation, port assignment, compose up, then per-module bootstrap
// scripts with a restart of the containers they touched.
func (o *Operations) Provision(ctx context.Context, moduleNames []string) error {
	dist := o.Env.Get(env.KeyClusterDist, model.DistTrino)
	version := o.Env.Get(env.KeyClusterVer, "")
	if version == "" {
		return model.NewUserErrorHint(
			"set CLUSTER_VER in minitrino.cfg, the shell, or --env",
			"no cluster version configured",
		)
	}

	if err := validate.CheckClusterVersion(dist, version); err != nil {
		return err
	}

	modules, err := o.Lib.Select(moduleNames)
	if err != nil {
		return err
	}
	if err := library.CheckIncompatibilities(modules); err != nil {
		return err
	}
	if err := library.CheckEnterprise(modules, dist); err != nil {
		return err
	}

	major, err := validate.MajorVersion(version)
	if err != nil {
		return model.NewUserError("invalid cluster version %q: %v", version, err)
	}
	if err := validate.CheckVersionRequirements(modules, major); err != nil {
		return err
	}

	for _, dep := range validate.CheckDependentClusters(modules) {
		o.Log.Warn("cluster %q must be provisioned first (modules: %s)",
			dep.Name, strings.Join(dep.Modules, ", "))
	}

	if err := o.Ports.SetExternalPorts(ctx, modules, o.Env); err != nil {
		return err
	}

	o.Log.Info("provisioning cluster %q (%s %s)", o.Name, dist, version)
	command := composeCommand(o.Name, o.Lib.ComposePath(), modules, "up", "-d")
	opts := exec.DefaultOptions()
	opts.Env = envSlice(o.Env)
	if _, err := o.Exec.Stream(ctx, exec.Host(), opts, command, func(line string) {
		o.Log.Debug("%s", line)
	}); err != nil {
		return err
	}

	bootstrapped, err := o.runBootstrapScripts(ctx, modules)
	if err != nil {
		return err
	}
	if err := o.restartContainers(ctx, bootstrapped); err != nil {
		return err
	}
	if err := o.checkDuplicateConfig(ctx, dist); err != nil {
		return err
	}

	o.Log.Info("cluster %q is ready", o.Name)
	return nil
}

// coordinatorName is the fixed container name the base compose file gives
// the engine coordinator.
const coordinatorName = "trino"

// engineConfigFiles are the rendered configuration files scanned for
// duplicated properties after provisioning.
var engineConfigFiles = []string{"config.properties", "jvm.config"}

// engineConfigDir returns the coordinator's rendered configuration
// directory for the distribution.
func engineConfigDir(dist string) string {
	if dist == model.DistStarburst {
		return "/etc/starburst"
	}
	return "/etc/trino"
}

// checkDuplicateConfig reads the coordinator's rendered configuration
// through the container executor and warns about duplicated property keys.
// Duplicates never fail provisioning; the engine resolves its own
// precedence.
func (o *Operations) checkDuplicateConfig(ctx context.Context, dist string) error {
	containers, err := dockerx.ListContainers(ctx, o.API, o.Name)
	if err != nil {
		return err
	}
	var coordinator *dockerx.Resource
	for i := range containers {
		if containers[i].Name == coordinatorName {
			coordinator = &containers[i]
			break
		}
	}
	if coordinator == nil {
		o.Log.Debug("no coordinator container %q; skipping duplicate-config scan", coordinatorName)
		return nil
	}

	opts := exec.DefaultOptions()
	opts.TriggerError = false
	opts.SuppressOutput = true
	target := exec.InContainer(coordinator.ID, coordinator.Name)

	files := make(map[string]string, len(engineConfigFiles))
	for _, name := range engineConfigFiles {
		results, err := o.Exec.Run(ctx, target, opts, "cat "+engineConfigDir(dist)+"/"+name)
		if err != nil {
			return err
		}
		if len(results) == 0 || results[0].ExitCode != 0 {
			// The image may not render this file.
			continue
		}
		files[name] = results[0].Output
	}

	for _, finding := range validate.CheckDuplicateConfig(files) {
		o.Log.Warn("%s", finding.Message)
	}
	return nil
}

// runBootstrapScripts executes each module's bootstrap script inside the
// module's container and returns the containers that ran one.
func (o *Operations) runBootstrapScripts(ctx context.Context, modules []library.Module) ([]dockerx.Resource, error) {
	containers, err := dockerx.ListContainers(ctx, o.API, o.Name)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]dockerx.Resource, len(containers))
	for _, c := range containers {
		byName[c.Name] = c
	}

	var bootstrapped []dockerx.Resource
	for _, m := range modules {
		script := m.BootstrapPath()
		if script == "" {
			continue
		}

		content, err := os.ReadFile(script)
		if err != nil {
			return nil, model.WrapSystemError(err, "failed to read bootstrap script for module %q", m.Name)
		}

		for _, serviceName := range sortedServiceNames(m.Services) {
			containerName := m.Services[serviceName].ContainerName
			if containerName == "" {
				continue
			}
			c, ok := byName[containerName]
			if !ok {
				return nil, model.NewSystemError(
					"container %q for module %q is not running; cannot bootstrap", containerName, m.Name,
				)
			}

			o.Log.Info("running bootstrap script for module %q in container %q", m.Name, c.Name)
			if _, err := o.Exec.Run(ctx, exec.InContainer(c.ID, c.Name), exec.DefaultOptions(), string(content)); err != nil {
				return nil, err
			}
			bootstrapped = append(bootstrapped, c)
		}
	}
	return bootstrapped, nil
}

// restartContainers stop-starts the given containers so configuration laid
// down by bootstrap scripts takes effect.
func (o *Operations) restartContainers(ctx context.Context, containers []dockerx.Resource) error {
	for _, c := range containers {
		o.Log.Info("restarting container %q", c.Name)
		if err := dockerx.StopContainer(ctx, o.API, c.ID); err != nil {
			return err
		}
		if err := dockerx.StartContainer(ctx, o.API, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// Down stops the cluster's containers. Unless keep is set, the stopped
// containers are removed as well; volumes and networks survive either way
// so a later provision resumes with warm state.
func (o *Operations) Down(ctx context.Context, keep bool) error {
	containers, err := dockerx.ListContainers(ctx, o.API, o.Name)
	if err != nil {
		return err
	}
	if len(containers) == 0 {
		o.Log.Info("no containers to bring down for cluster %q", o.Name)
		return nil
	}

	stopped, err := dockerx.StopAll(ctx, o.API, o.Log, containers)
	if err != nil {
		return err
	}
	o.Log.Info("stopped %d container(s)", stopped)

	if keep {
		return nil
	}

	removed, err := dockerx.RemoveAll(ctx, o.API, o.Log, containers, true)
	if err != nil {
		return err
	}
	o.Log.Info("removed %d container(s)", removed)
	return nil
}

// Remove deletes the cluster's persistent resources: containers (forced
// when force is set), then volumes and networks. Per-item failures are
// warnings; a volume attached to a live container simply stays.
func (o *Operations) Remove(ctx context.Context, force bool) error {
	containers, err := dockerx.ListContainers(ctx, o.API, o.Name)
	if err != nil {
		return err
	}
	if len(containers) > 0 {
		if !force {
			return model.NewUserErrorHint(
				"bring the cluster down first, or pass --force",
				"cluster %q still has %d container(s)", o.Name, len(containers),
			)
		}
		if _, err := dockerx.RemoveAll(ctx, o.API, o.Log, containers, true); err != nil {
			return err
		}
	}

	volumes, err := dockerx.ListVolumes(ctx, o.API, o.Name)
	if err != nil {
		return err
	}
	for _, v := range volumes {
		if err := o.API.VolumeRemove(ctx, v.ID, force); err != nil {
			o.Log.Warn("failed to remove volume %s: %v", v.Name, err)
			continue
		}
		o.Log.Debug("removed volume %s", v.Name)
	}

	networks, err := dockerx.ListNetworks(ctx, o.API, o.Name)
	if err != nil {
		return err
	}
	for _, n := range networks {
		if err := o.API.NetworkRemove(ctx, n.ID); err != nil {
			o.Log.Warn("failed to remove network %s: %v", n.Name, err)
			continue
		}
		o.Log.Debug("removed network %s", n.Name)
	}

	o.Log.Info("removed resources for cluster %q", o.Name)
	return nil
}

// Restart stop-starts every container in the cluster.
func (o *Operations) Restart(ctx context.Context) error {
	containers, err := dockerx.ListContainers(ctx, o.API, o.Name)
	if err != nil {
		return err
	}
	if len(containers) == 0 {
		return model.NewUserErrorHint(
			"provision the cluster first",
			"cluster %q has no containers", o.Name,
		)
	}

	if _, err := dockerx.StopAll(ctx, o.API, o.Log, containers); err != nil {
		return err
	}
	for _, c := range containers {
		if err := dockerx.StartContainer(ctx, o.API, c.ID); err != nil {
			o.Log.Warn("failed to start container %s: %v", c.Name, err)
		}
	}

	o.Log.Info("restarted cluster %q", o.Name)
	return nil
}

// Status returns the cluster's containers and, when sampleStats is set, a
// parallel statistics sample for each running one. With sampling disabled
// the runtime's stats endpoints are never touched.
func (o *Operations) Status(ctx context.Context, sampleStats bool) ([]dockerx.Resource, []dockerx.Stats, error) {
	containers, err := dockerx.ListContainers(ctx, o.API, o.Name)
	if err != nil {
		return nil, nil, err
	}
	if !sampleStats {
		return containers, nil, nil
	}

	var running []dockerx.Resource
	for _, c := range containers {
		if c.Status == "running" {
			running = append(running, c)
		}
	}

	stats, err := dockerx.CollectStats(ctx, o.API, o.Log, running)
	if err != nil {
		return nil, nil, err
	}
	return containers, stats, nil
}

func sortedServiceNames(services map[string]library.Service) []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	// Stable iteration keeps bootstrap order deterministic across runs.
	sort.Strings(names)
	return names
}
