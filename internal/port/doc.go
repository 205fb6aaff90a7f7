// Package port assigns collision-free host TCP ports to the services a
// cluster exposes.
//
// For each service the manager starts at the service's declared default
// port and scans upward until a candidate is free on the host, not
// published by any running container, and not already claimed by a
// different variable earlier in the same invocation. The chosen port is
// published into the environment mapping — environment resolution must
// have fully completed before assignment begins — and a reachable
// localhost endpoint is logged.
//
// The scan is bounded: a pathological host where every candidate in the
// window is taken yields an explicit "no available port" error instead of
// scanning forever. Two concurrent invocations on the same host can still
// race on port selection; there is no cross-process locking.
package port
