// Package dockerx wraps the container runtime SDK client for managing
// cluster containers and their supporting resources.
//
// It handles automatic runtime socket detection across platforms, label
// based discovery of cluster-owned resources, and the two deliberately
// parallelized batch operations: bulk stop/remove during teardown and
// per-container statistics collection when listing resources. Batches run
// on a bounded worker pool with per-item failure isolation — one
// container's failure is logged and does not abort the rest.
package dockerx
