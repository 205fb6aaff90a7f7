package cli

import (
	"github.com/spf13/cobra"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	// keep leaves the stopped containers in place for a faster
	// re-provision.
	keep bool
}

// NewDownCommand creates the "down" cobra command.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Bring down a cluster's containers",
		Long: `Stop the target cluster's containers and remove them. Volumes and
networks are left in place; use "remove" to delete those too.

Examples:
  minitrino down
  minitrino down --keep
  minitrino -c staging down`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := setupApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return app.ops.Down(cmd.Context(), flags.keep)
		},
	}

	cmd.Flags().BoolVar(&flags.keep, "keep", false,
		"Stop containers but do not remove them")

	return cmd
}
