package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jefflester/minitrino-sub001/internal/library"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// modulesFlags holds the flag values for the modules command.
type modulesFlags struct {
	// moduleType filters the listing to one module type.
	moduleType string
}

// NewModulesCommand creates the "modules" cobra command. It needs only the
// library, not the container runtime.
func NewModulesCommand() *cobra.Command {
	flags := &modulesFlags{}

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the modules available in the library",
		Long: `List the modules the library offers, with their type and description.

Examples:
  minitrino modules
  minitrino modules --type catalog`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runModules(flags)
		},
	}

	cmd.Flags().StringVar(&flags.moduleType, "type", "",
		"Filter by module type: admin, catalog, security")

	return cmd
}

func runModules(flags *modulesFlags) error {
	var filter model.ModuleType
	if flags.moduleType != "" {
		t, err := model.ParseModuleType(flags.moduleType)
		if err != nil {
			return model.NewUserError("%v", err)
		}
		filter = t
	}

	environment, err := resolveEnvironment()
	if err != nil {
		return err
	}
	lib, err := library.Open(environment, log)
	if err != nil {
		return err
	}

	modules, err := lib.Modules()
	if err != nil {
		return err
	}

	printed := 0
	for _, m := range modules {
		if filter != "" && m.Type != filter {
			continue
		}
		if printed == 0 {
			fmt.Printf("%-24s %-10s %s\n", "MODULE", "TYPE", "DESCRIPTION")
		}
		description := m.Metadata.Description
		if m.Metadata.Enterprise {
			description += " (enterprise)"
		}
		fmt.Printf("%-24s %-10s %s\n", m.Name, m.Type, description)
		printed++
	}

	if printed == 0 {
		log.Info("no modules found")
	}
	return nil
}
