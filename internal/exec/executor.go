package exec

import (
	"context"

	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// Executor dispatches commands to the host or container back-end based on
// the execution target. One Executor is created per command invocation and
// shares the container back-end's shell memoization across calls.
type Executor struct {
	host      *hostExecutor
	container *containerExecutor
	log       *logging.Logger
}

// NewExecutor creates an Executor. The runtime client may be nil when only
// host execution is needed; dispatching a container target without a client
// yields an ExitCode -1 Result rather than a panic.
func NewExecutor(cli ExecAPI, log *logging.Logger) *Executor {
	e := &Executor{
		host: &hostExecutor{log: log},
		log:  log,
	}
	if cli != nil {
		e.container = newContainerExecutor(cli, log)
	}
	return e
}

// Run executes the commands in order against the target and returns one
// Result per command: N inputs always produce N results. Back-end
// construction or dispatch failures are captured into a Result with
// ExitCode -1 rather than propagated.
//
// With Options.TriggerError set (the default), the first non-zero exit
// stops the batch and returns a system error alongside the results
// gathered so far — including a Result for the failed command. Without it,
// failures are attached to their Result and the batch continues.
func (e *Executor) Run(ctx context.Context, target Target, opts Options, commands ...string) ([]Result, error) {
	results := make([]Result, 0, len(commands))

	for _, command := range commands {
		e.log.Debug("executing on %s: %s", target, command)

		result := e.dispatch(ctx, target, command, opts, nil)
		results = append(results, result)

		if opts.TriggerError && result.ExitCode != 0 {
			err := result.Err
			if err == nil {
				err = model.NewSystemError("command %q exited with code %d on %s", command, result.ExitCode, target)
			} else {
				err = model.WrapSystemError(err, "command %q failed on %s", command, target)
			}
			return results, err
		}

		// Non-raising mode: record the failure on the Result.
		if result.ExitCode != 0 && result.Err == nil {
			result.Err = model.NewSystemError("command %q exited with code %d on %s", command, result.ExitCode, target)
			results[len(results)-1] = result
		}
	}

	return results, nil
}

// Stream executes one command and hands each output line to fn as it
// arrives. The call blocks until the command finishes; the caller pulls
// lines synchronously through fn. The returned Result carries the full
// captured output and exit code, subject to the same TriggerError
// semantics as Run.
func (e *Executor) Stream(ctx context.Context, target Target, opts Options, command string, fn func(line string)) (Result, error) {
	e.log.Debug("streaming on %s: %s", target, command)

	result := e.dispatch(ctx, target, command, opts, func(line string) {
		fn(StripANSI(line))
	})

	if opts.TriggerError && result.ExitCode != 0 {
		err := result.Err
		if err == nil {
			err = model.NewSystemError("command %q exited with code %d on %s", command, result.ExitCode, target)
		}
		return result, err
	}
	return result, nil
}

// dispatch routes a single command to the back-end selected by the target.
// The switch is exhaustive over the Target variants.
func (e *Executor) dispatch(ctx context.Context, target Target, command string, opts Options, lineFn func(string)) Result {
	switch target.kind {
	case kindHost:
		return e.host.run(ctx, command, opts, lineFn)
	case kindContainer:
		if e.container == nil {
			return Result{
				Command:  command,
				ExitCode: -1,
				Err:      model.NewSystemError("no container runtime client available for %s", target),
			}
		}
		return e.container.run(ctx, target, command, opts, lineFn)
	default:
		return Result{
			Command:  command,
			ExitCode: -1,
			Err:      model.NewSystemError("unknown execution target"),
		}
	}
}
