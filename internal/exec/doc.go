// Package exec implements the dual-mode command execution abstraction:
// shell commands run either as host subprocesses or inside a running
// container, behind one dispatcher that returns a uniform Result.
//
// The execution target is an explicit tagged variant (Host or InContainer)
// rather than being inferred from argument presence, and the dispatcher
// switches on it exhaustively. Both back-ends support incremental
// line-by-line output streaming; the host back-end additionally installs a
// scoped interrupt handler that kills the subprocess on SIGINT/SIGTERM,
// and the container back-end auto-detects a working shell with a bounded
// retry window for containers that are still starting.
//
// There is no independent timeout mechanism: a hung command blocks until
// the context is cancelled or, for host commands, an external signal
// arrives. A cancelled CLI process leaves an in-container exec running.
package exec
