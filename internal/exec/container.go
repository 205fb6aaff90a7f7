package exec

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// ExecAPI is the slice of the runtime client the container back-end needs.
// The full SDK client satisfies it; tests substitute a fake.
type ExecAPI interface {
	ContainerExecCreate(ctx context.Context, container string, options container.ExecOptions) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecStartOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
}

// shellCandidates is the fixed preference order probed inside a container
// to find a working shell. Bash variants first, sh as the fallback.
var shellCandidates = []string{
	"/bin/bash",
	"/usr/bin/bash",
	"/usr/local/bin/bash",
	"/bin/sh",
}

const (
	// defaultProbeWindow bounds how long shell detection retries against a
	// container that is not yet accepting exec calls.
	defaultProbeWindow = 10 * time.Second

	// defaultProbeInterval is the pause between probe rounds.
	defaultProbeInterval = 500 * time.Millisecond
)

// containerExecutor runs commands inside running containers through the
// runtime's low-level exec create/start/inspect sequence.
type containerExecutor struct {
	cli ExecAPI
	log *logging.Logger

	probeWindow   time.Duration
	probeInterval time.Duration

	// shells memoizes the resolved shell per container, once per executor
	// instance. Guarded because batch operations may execute from worker
	// goroutines.
	mu     sync.Mutex
	shells map[string]string
}

func newContainerExecutor(cli ExecAPI, log *logging.Logger) *containerExecutor {
	return &containerExecutor{
		cli:           cli,
		log:           log,
		probeWindow:   defaultProbeWindow,
		probeInterval: defaultProbeInterval,
		shells:        make(map[string]string),
	}
}

// resolveShell finds a working shell in the container by probing the fixed
// candidate list, retrying for a bounded window since a just-started
// container may not yet accept exec calls. The result is memoized.
func (c *containerExecutor) resolveShell(ctx context.Context, containerID, containerName string) (string, error) {
	c.mu.Lock()
	if shell, ok := c.shells[containerID]; ok {
		c.mu.Unlock()
		return shell, nil
	}
	c.mu.Unlock()

	deadline := time.Now().Add(c.probeWindow)
	var lastErr error

	for {
		for _, candidate := range shellCandidates {
			exitCode, _, err := c.runExec(ctx, containerID, []string{candidate, "-c", "true"}, nil, nil)
			if err != nil {
				// The runtime rejected the exec call — the container is
				// likely still starting. Remember the cause and retry.
				lastErr = err
				break
			}
			if exitCode == 0 {
				c.mu.Lock()
				c.shells[containerID] = candidate
				c.mu.Unlock()
				return candidate, nil
			}
		}

		if time.Now().After(deadline) {
			return "", model.WrapSystemError(lastErr,
				"no working shell found in container %q within %s", containerName, c.probeWindow)
		}

		select {
		case <-ctx.Done():
			return "", model.WrapSystemError(ctx.Err(),
				"shell detection cancelled for container %q", containerName)
		case <-time.After(c.probeInterval):
		}
	}
}

// run executes one command inside the target container and returns its
// Result. Streamed byte chunks are reassembled into complete lines before
// being handed to lineFn or the logger.
func (c *containerExecutor) run(ctx context.Context, target Target, command string, opts Options, lineFn func(string)) Result {
	start := time.Now()

	shell, err := c.resolveShell(ctx, target.containerID, target.containerName)
	if err != nil {
		return Result{Command: command, ExitCode: -1, Duration: time.Since(start), Err: err}
	}

	emit := lineFn
	if emit == nil && !opts.SuppressOutput {
		emit = func(line string) { c.log.Info("%s", StripANSI(line)) }
	}

	exitCode, output, err := c.runExec(ctx, target.containerID, []string{shell, "-c", command}, opts.Env, emit)
	if err != nil {
		return Result{Command: command, ExitCode: -1, Duration: time.Since(start), Err: err}
	}

	return Result{
		Command:  command,
		Output:   StripANSI(output),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}
}

// runExec performs the exec create/attach/inspect sequence against the
// runtime and returns the exit code and combined output. lineFn, when
// non-nil, receives each complete output line as it is reassembled.
func (c *containerExecutor) runExec(ctx context.Context, containerID string, cmd, extraEnv []string, lineFn func(string)) (int, string, error) {
	created, err := c.cli.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		Env:          extraEnv,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return -1, "", model.WrapSystemError(err, "failed to create exec in container %q", containerID)
	}

	resp, err := c.cli.ContainerExecAttach(ctx, created.ID, container.ExecStartOptions{})
	if err != nil {
		return -1, "", model.WrapSystemError(err, "failed to attach to exec in container %q", containerID)
	}
	defer resp.Close()

	// Both demultiplexed streams feed one lineWriter so output stays in
	// arrival order, matching the host executor's combined capture.
	lw := newLineWriter(lineFn)
	if _, err := stdcopy.StdCopy(lw, lw, resp.Reader); err != nil {
		return -1, "", model.WrapSystemError(err, "failed to read exec output from container %q", containerID)
	}
	lw.Flush()

	inspect, err := c.cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return -1, "", model.WrapSystemError(err, "failed to inspect exec in container %q", containerID)
	}

	return inspect.ExitCode, lw.String(), nil
}

// lineWriter reassembles streamed byte chunks into complete lines. Exec
// output arrives in arbitrary chunk boundaries; line-oriented consumers
// only ever see whole lines.
type lineWriter struct {
	buf    strings.Builder
	all    strings.Builder
	lineFn func(string)
}

func newLineWriter(lineFn func(string)) *lineWriter {
	return &lineWriter{lineFn: lineFn}
}

// Write satisfies io.Writer.
func (w *lineWriter) Write(p []byte) (int, error) {
	w.all.Write(p)
	if w.lineFn == nil {
		return len(p), nil
	}

	for _, b := range p {
		if b == '\n' {
			w.lineFn(strings.TrimSuffix(w.buf.String(), "\r"))
			w.buf.Reset()
			continue
		}
		w.buf.WriteByte(b)
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *lineWriter) Flush() {
	if w.lineFn != nil && w.buf.Len() > 0 {
		w.lineFn(w.buf.String())
		w.buf.Reset()
	}
}

// String returns everything written, lines and partials alike.
func (w *lineWriter) String() string {
	return w.all.String()
}
