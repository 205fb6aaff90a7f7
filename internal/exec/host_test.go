package exec

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

func newTestExecutor() (*Executor, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logging.NewWithWriters(&buf, &buf, false)
	return NewExecutor(nil, log), &buf
}

// TestRun_HostFalse_TriggersError verifies a failing host command raises a
// system error carrying exit code 1 under default options.
func TestRun_HostFalse_TriggersError(t *testing.T) {
	e, _ := newTestExecutor()

	results, err := e.Run(context.Background(), Host(), DefaultOptions(), "false")
	require.Error(t, err)

	var se *model.SystemError
	assert.ErrorAs(t, err, &se)

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ExitCode)
}

// TestRun_HostFalse_NonRaising verifies trigger_error=false returns the
// Result without raising; the failure is attached to the Result instead.
func TestRun_HostFalse_NonRaising(t *testing.T) {
	e, _ := newTestExecutor()
	opts := DefaultOptions()
	opts.TriggerError = false

	results, err := e.Run(context.Background(), Host(), opts, "false")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ExitCode)
	assert.Error(t, results[0].Err)
}

// TestRun_HostCapturesOutput verifies combined output is captured and the
// Result is populated even with incremental logging suppressed.
func TestRun_HostCapturesOutput(t *testing.T) {
	e, buf := newTestExecutor()
	opts := DefaultOptions()
	opts.SuppressOutput = true

	results, err := e.Run(context.Background(), Host(), opts, "echo out; echo err 1>&2")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Contains(t, results[0].Output, "out")
	assert.Contains(t, results[0].Output, "err")
	assert.Equal(t, 0, results[0].ExitCode)
	assert.Positive(t, results[0].Duration)

	// Suppressed: nothing logged incrementally.
	assert.NotContains(t, buf.String(), "out")
}

// TestRun_HostStripsANSI verifies terminal control codes are removed from
// the stored output.
func TestRun_HostStripsANSI(t *testing.T) {
	e, _ := newTestExecutor()
	opts := DefaultOptions()
	opts.SuppressOutput = true

	results, err := e.Run(context.Background(), Host(), opts, `printf '\033[31mred\033[0m\n'`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "red\n", results[0].Output)
}

// TestRun_BatchProducesResultPerCommand verifies N inputs produce N results
// in non-raising mode, failures included.
func TestRun_BatchProducesResultPerCommand(t *testing.T) {
	e, _ := newTestExecutor()
	opts := DefaultOptions()
	opts.TriggerError = false

	results, err := e.Run(context.Background(), Host(), opts, "true", "false", "echo done")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].ExitCode)
	assert.Equal(t, 1, results[1].ExitCode)
	assert.Equal(t, 0, results[2].ExitCode)
	assert.Contains(t, results[2].Output, "done")
}

// TestRun_BatchStopsOnTriggerError verifies the default mode stops at the
// first failure but still returns a Result for the failed command.
func TestRun_BatchStopsOnTriggerError(t *testing.T) {
	e, _ := newTestExecutor()

	results, err := e.Run(context.Background(), Host(), DefaultOptions(), "true", "false", "echo never")
	require.Error(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[1].ExitCode)
}

// TestRun_ExtraEnvReachesCommand verifies Options.Env is injected into the
// subprocess environment.
func TestRun_ExtraEnvReachesCommand(t *testing.T) {
	e, _ := newTestExecutor()
	opts := DefaultOptions()
	opts.SuppressOutput = true
	opts.Env = []string{"MINITRINO_TEST_VALUE=hello"}

	results, err := e.Run(context.Background(), Host(), opts, "echo $MINITRINO_TEST_VALUE")
	require.NoError(t, err)
	assert.Contains(t, results[0].Output, "hello")
}

// TestStream_HostPullsLines verifies streaming hands lines to the consumer
// in order and still returns the complete Result.
func TestStream_HostPullsLines(t *testing.T) {
	e, _ := newTestExecutor()
	opts := DefaultOptions()
	opts.SuppressOutput = true

	var lines []string
	result, err := e.Stream(context.Background(), Host(), opts, "echo one; echo two", func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two"}, lines)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Output, "one")
}

// TestRun_ContainerTargetWithoutClient verifies dispatching a container
// target with no runtime client is captured as an ExitCode -1 Result, not
// a panic.
func TestRun_ContainerTargetWithoutClient(t *testing.T) {
	e, _ := newTestExecutor()
	opts := DefaultOptions()
	opts.TriggerError = false

	results, err := e.Run(context.Background(), InContainer("abc123", "trino"), opts, "true")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, -1, results[0].ExitCode)
	assert.Error(t, results[0].Err)
}

// TestStripANSI covers the common escape forms.
func TestStripANSI(t *testing.T) {
	assert.Equal(t, "plain", StripANSI("plain"))
	assert.Equal(t, "colored", StripANSI("\x1b[1;32mcolored\x1b[0m"))
	assert.Equal(t, "moved", StripANSI("\x1b[2Kmoved"))
}
