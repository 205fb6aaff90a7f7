package exec

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// hostExecutor runs commands as host subprocesses through the system shell.
type hostExecutor struct {
	log *logging.Logger

	// shellPath caches the resolved shell so repeated commands in one
	// invocation don't re-probe PATH.
	shellPath string
}

// resolveShell picks the shell used for host commands: $SHELL if set,
// then bash, then sh.
func (h *hostExecutor) resolveShell() (string, error) {
	if h.shellPath != "" {
		return h.shellPath, nil
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		h.shellPath = shell
		return shell, nil
	}
	if bash, err := exec.LookPath("bash"); err == nil {
		h.shellPath = bash
		return bash, nil
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		return "", err
	}
	h.shellPath = sh
	return sh, nil
}

// run executes one command and returns its Result. Non-interactively the
// combined stdout+stderr is captured line-by-line so output can be logged
// as it arrives; lineFn (optional) receives each raw line before ANSI
// stripping is applied to the stored output.
func (h *hostExecutor) run(ctx context.Context, command string, opts Options, lineFn func(string)) Result {
	start := time.Now()

	shell, err := h.resolveShell()
	if err != nil {
		return Result{Command: command, ExitCode: -1, Duration: time.Since(start), Err: err}
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Env = append(os.Environ(), opts.Env...)

	if opts.Interactive {
		return h.runInteractive(cmd, command, start)
	}

	// A single pipe receives both streams so the capture preserves the
	// interleaving the user would see in a terminal.
	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{Command: command, ExitCode: -1, Duration: time.Since(start), Err: err}
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return Result{Command: command, ExitCode: -1, Duration: time.Since(start), Err: err}
	}

	// Scoped signal override: while the subprocess runs, SIGINT/SIGTERM
	// kill it instead of tearing down the CLI mid-write. signal.Stop in
	// restore() reinstates the previous disposition.
	restore := h.interceptSignals(cmd)
	defer restore()

	// The parent's write end must be closed after Start so the read side
	// sees EOF when the child exits.
	pw.Close()

	var output strings.Builder
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if lineFn != nil {
			lineFn(line)
		}
		if !opts.SuppressOutput && lineFn == nil {
			h.log.Info("%s", StripANSI(line))
		}
		output.WriteString(line)
		output.WriteString("\n")
	}
	pr.Close()

	waitErr := cmd.Wait()

	result := Result{
		Command:  command,
		Output:   StripANSI(output.String()),
		Duration: time.Since(start),
	}

	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Err = waitErr
		}
	}

	return result
}

// runInteractive attaches the subprocess directly to the controlling
// terminal. Nothing is captured; Output stays empty. Requires stdin to be
// a terminal — interactive commands in a pipeline make no sense.
func (h *hostExecutor) runInteractive(cmd *exec.Cmd, command string, start time.Time) Result {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return Result{
			Command:  command,
			ExitCode: -1,
			Duration: time.Since(start),
			Err:      model.NewSystemError("interactive command %q requires a terminal on stdin", command),
		}
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()

	result := Result{Command: command, Duration: time.Since(start)}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Err = err
		}
	}
	return result
}

// interceptSignals installs a temporary SIGINT/SIGTERM handler that kills
// the subprocess, returning a function that restores the prior disposition.
func (h *hostExecutor) interceptSignals(cmd *exec.Cmd) func() {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			h.log.Debug("received %v, terminating subprocess", sig)
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
