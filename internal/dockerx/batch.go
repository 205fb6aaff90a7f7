package dockerx

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/docker/docker/api/types/container"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// maxBatchConcurrency caps the worker pool for batched runtime calls so a
// large cluster doesn't overwhelm the daemon.
const maxBatchConcurrency = 8

// runBounded executes one task per item on a bounded pool. Task errors are
// collected per item, not propagated — one failure must not abort the
// batch — so the errgroup only carries semaphore acquisition failures
// (context cancellation).
func runBounded(ctx context.Context, n int, task func(ctx context.Context, i int)) error {
	sem := semaphore.NewWeighted(maxBatchConcurrency)
	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			if err := sem.Acquire(groupCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			task(groupCtx, i)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return model.WrapSystemError(err, "batched runtime operation cancelled")
	}
	return nil
}

// StopAll stops the given containers in parallel. Per-item failures are
// logged as warnings and do not abort the batch; the returned count is the
// number of containers successfully stopped.
func StopAll(ctx context.Context, cli ContainerAPI, log *logging.Logger, containers []Resource) (int, error) {
	var mu sync.Mutex
	stopped := 0

	err := runBounded(ctx, len(containers), func(ctx context.Context, i int) {
		c := containers[i]
		if err := StopContainer(ctx, cli, c.ID); err != nil {
			log.Warn("failed to stop container %s: %v", c.Name, err)
			return
		}
		log.Debug("stopped container %s", c.Name)
		mu.Lock()
		stopped++
		mu.Unlock()
	})

	return stopped, err
}

// RemoveAll removes the given containers in parallel with the same
// per-item failure isolation as StopAll.
func RemoveAll(ctx context.Context, cli ContainerAPI, log *logging.Logger, containers []Resource, force bool) (int, error) {
	var mu sync.Mutex
	removed := 0

	err := runBounded(ctx, len(containers), func(ctx context.Context, i int) {
		c := containers[i]
		if err := RemoveContainer(ctx, cli, c.ID, force); err != nil {
			log.Warn("failed to remove container %s: %v", c.Name, err)
			return
		}
		log.Debug("removed container %s", c.Name)
		mu.Lock()
		removed++
		mu.Unlock()
	})

	return removed, err
}

// Stats holds the one-shot statistics sample for one container.
type Stats struct {
	ContainerName string

	// CPUPercent is the CPU usage relative to the host, in percent.
	CPUPercent float64

	// MemoryUsage and MemoryLimit are in bytes.
	MemoryUsage uint64
	MemoryLimit uint64

	// Err records the per-container collection failure, if any.
	Err error
}

// CollectStats samples statistics for each container in parallel on the
// bounded pool. One container's failure is recorded on its Stats entry and
// logged; the rest of the batch proceeds. The result preserves input order.
func CollectStats(ctx context.Context, cli ContainerAPI, log *logging.Logger, containers []Resource) ([]Stats, error) {
	stats := make([]Stats, len(containers))

	err := runBounded(ctx, len(containers), func(ctx context.Context, i int) {
		c := containers[i]
		stats[i] = sampleStats(ctx, cli, c)
		if stats[i].Err != nil {
			log.Warn("failed to collect stats for container %s: %v", c.Name, stats[i].Err)
		}
	})

	return stats, err
}

// sampleStats performs one ContainerStatsOneShot call and reduces the
// response to the fields the listing displays.
func sampleStats(ctx context.Context, cli ContainerAPI, c Resource) Stats {
	s := Stats{ContainerName: c.Name}

	reader, err := cli.ContainerStatsOneShot(ctx, c.ID)
	if err != nil {
		s.Err = model.WrapSystemError(err, "stats request failed")
		return s
	}
	defer reader.Body.Close()

	var resp container.StatsResponse
	if err := json.NewDecoder(reader.Body).Decode(&resp); err != nil {
		s.Err = model.WrapSystemError(err, "failed to decode stats response")
		return s
	}

	s.MemoryUsage = resp.MemoryStats.Usage
	s.MemoryLimit = resp.MemoryStats.Limit
	s.CPUPercent = cpuPercent(&resp)
	return s
}

// cpuPercent computes CPU usage from the delta between the sample and the
// pre-sample, scaled by the number of online CPUs. This is the same
// calculation the runtime's own CLI uses.
func cpuPercent(resp *container.StatsResponse) float64 {
	cpuDelta := float64(resp.CPUStats.CPUUsage.TotalUsage) - float64(resp.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(resp.CPUStats.SystemUsage) - float64(resp.PreCPUStats.SystemUsage)
	if systemDelta <= 0 || cpuDelta < 0 {
		return 0
	}

	onlineCPUs := float64(resp.CPUStats.OnlineCPUs)
	if onlineCPUs == 0 {
		onlineCPUs = float64(len(resp.CPUStats.CPUUsage.PercpuUsage))
	}
	if onlineCPUs == 0 {
		return 0
	}

	return cpuDelta / systemDelta * onlineCPUs * 100.0
}
