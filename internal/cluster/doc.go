// Package cluster implements the lifecycle operations the CLI exposes:
// provisioning a cluster from a module selection, tearing it down, removing
// its persistent resources, and restarting it.
//
// Provisioning composes the validation, port-assignment, and execution
// pieces: the module selection is validated, host ports are published into
// the environment, the compose command line is executed on the host with
// that environment, and module bootstrap scripts run inside their
// containers before the affected containers are restarted.
package cluster
