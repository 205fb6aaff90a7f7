package cli

import (
	"context"

	"github.com/jefflester/minitrino-sub001/internal/cluster"
	"github.com/jefflester/minitrino-sub001/internal/dockerx"
	"github.com/jefflester/minitrino-sub001/internal/env"
	"github.com/jefflester/minitrino-sub001/internal/exec"
	"github.com/jefflester/minitrino-sub001/internal/library"
	"github.com/jefflester/minitrino-sub001/internal/port"
)

// app bundles the per-invocation collaborators the runtime-backed commands
// share. It is built once per command in setupApp and torn down by the
// returned cleanup function.
type app struct {
	env *env.Environment
	lib *library.Library
	cli *dockerx.Client
	ops *cluster.Operations
}

// setupApp resolves the environment, opens the library, connects to the
// container runtime, and wires the cluster operations for the target
// cluster. The cleanup function closes the runtime client.
func setupApp(ctx context.Context) (*app, func(), error) {
	environment, err := resolveEnvironment()
	if err != nil {
		return nil, nil, err
	}

	lib, err := library.Open(environment, log)
	if err != nil {
		return nil, nil, err
	}

	cli, err := dockerx.NewClient(environment.Get(env.KeyDockerHost, ""))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = cli.Close() }

	if err := cli.Ping(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}

	executor := exec.NewExecutor(cli.Inner(), log)
	ports := port.NewManager(cli.Inner(), log)

	ops, err := cluster.New(clusterName(environment), environment, executor, cli.Inner(), lib, ports, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &app{env: environment, lib: lib, cli: cli, ops: ops}, cleanup, nil
}
