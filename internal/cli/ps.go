package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// psFlags holds the flag values for the ps command.
type psFlags struct {
	// noStats skips the per-container statistics sample.
	noStats bool
}

// NewPsCommand creates the "ps" cobra command.
func NewPsCommand() *cobra.Command {
	flags := &psFlags{}

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List a cluster's containers",
		Long: `List the target cluster's containers with their state and, for
running ones, a CPU and memory sample.

Examples:
  minitrino ps
  minitrino -c staging ps --no-stats`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := setupApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			containers, stats, err := app.ops.Status(cmd.Context(), !flags.noStats)
			if err != nil {
				return err
			}
			if len(containers) == 0 {
				log.Info("no containers found for cluster %q", app.ops.Name)
				return nil
			}

			statsByName := make(map[string]string, len(stats))
			for _, s := range stats {
				if s.Err != nil {
					statsByName[s.ContainerName] = "-"
					continue
				}
				statsByName[s.ContainerName] = fmt.Sprintf("%.1f%% / %s",
					s.CPUPercent, formatBytes(s.MemoryUsage))
			}

			fmt.Printf("%-28s %-12s %-10s %s\n", "CONTAINER", "STATE", "MODULE", "CPU / MEM")
			for _, c := range containers {
				module := c.Module()
				if module == "" {
					module = "-"
				}
				usage := statsByName[c.Name]
				if usage == "" {
					usage = "-"
				}
				fmt.Printf("%-28s %-12s %-10s %s\n", c.Name, c.Status, module, usage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.noStats, "no-stats", false,
		"Skip CPU/memory sampling")

	return cmd
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
