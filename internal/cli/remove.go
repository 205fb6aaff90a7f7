package cli

import (
	"github.com/spf13/cobra"
)

// removeFlags holds the flag values for the remove command.
type removeFlags struct {
	// force removes live containers and attached volumes instead of
	// refusing.
	force bool
}

// NewRemoveCommand creates the "remove" cobra command.
func NewRemoveCommand() *cobra.Command {
	flags := &removeFlags{}

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a cluster's persistent resources",
		Long: `Remove the target cluster's volumes and networks. A cluster that
still has containers is refused unless --force is passed, in which case
the containers are removed first.

Examples:
  minitrino remove
  minitrino remove --force`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := setupApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return app.ops.Remove(cmd.Context(), flags.force)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false,
		"Remove containers and attached volumes as well")

	return cmd
}
