package cli

import (
	"github.com/spf13/cobra"
)

// NewRestartCommand creates the "restart" cobra command.
func NewRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart a cluster's containers",
		Long: `Stop and start every container in the target cluster.

Examples:
  minitrino restart
  minitrino -c staging restart`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := setupApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return app.ops.Restart(cmd.Context())
		},
	}
}
