package cli

import (
	"github.com/spf13/cobra"
)

// provisionFlags holds the flag values for the provision command.
type provisionFlags struct {
	// modules is the selection to provision, repeatable.
	modules []string
}

// NewProvisionCommand creates the "provision" cobra command.
func NewProvisionCommand() *cobra.Command {
	flags := &provisionFlags{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision a cluster with the selected modules",
		Long: `Provision a cluster from the module library.

The selection is validated against the configured distribution and
version, host ports are assigned to every exposed service, and the
cluster is brought up with compose. Modules shipping a bootstrap script
have it executed inside their container before that container is
restarted.

Examples:
  minitrino provision
  minitrino provision -m postgres -m ldap
  minitrino -c staging -e CLUSTER_VER=476 provision -m postgres`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := setupApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return app.ops.Provision(cmd.Context(), flags.modules)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.modules, "module", "m", nil,
		"Module to provision (repeatable)")

	return cmd
}
