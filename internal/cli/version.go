package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jefflester/minitrino-sub001/internal/library"
)

// NewVersionCommand creates the "version" cobra command. It reports the
// CLI version and, when a library is installed, the library version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show CLI and library versions",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("minitrino %s\n", Version)

			environment, err := resolveEnvironment()
			if err != nil {
				// The CLI version printed; a missing library only means
				// there is no library version to report.
				return nil
			}
			lib, err := library.Open(environment, log)
			if err != nil {
				return nil
			}

			fmt.Printf("library %s\n", lib.Version())
			return nil
		},
	}
}
