// Package cli implements the cobra-based CLI commands for minitrino.
//
// Each subcommand (provision, down, remove, restart, modules, ps, version)
// is defined in its own file within this package. This file defines the
// root command, the global flags, and the error-to-exit-code translation
// at the process boundary.
package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jefflester/minitrino-sub001/internal/env"
	"github.com/jefflester/minitrino-sub001/internal/logging"
	"github.com/jefflester/minitrino-sub001/internal/model"
)

// Global flag variables shared across all subcommands. They are bound to
// cobra persistent flags on the root command, which makes them available
// to every subcommand automatically.
var (
	// envPairs collects repeated --env KEY=VALUE overrides. They are the
	// highest-precedence configuration source.
	envPairs []string

	// clusterFlag names the cluster an invocation operates on. Empty means
	// the name comes from the resolved environment.
	clusterFlag string

	// verbose enables debug logging and full error chains.
	verbose bool
)

// Version is the CLI version, set at build time via ldflags.
var Version = "dev"

// log is the invocation's logger, constructed once the --verbose flag is
// parsed.
var log *logging.Logger

// NewRootCommand creates and configures the root cobra command. The root
// command itself performs no action; functionality lives in subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minitrino",
		Short: "Provision and manage local Trino clusters on a container runtime",
		Long: `minitrino provisions local Trino clusters from a library of pluggable
modules — catalogs, security integrations, and administrative add-ons —
on top of a container runtime.

Configuration merges, in order of precedence: --env flags, the shell
environment, ~/.minitrino/minitrino.cfg, and the library's defaults file.`,

		// Errors are formatted by Execute; cobra must not print them or
		// the usage text on every failure.
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(verbose)
		},
	}

	rootCmd.PersistentFlags().StringArrayVarP(&envPairs, "env", "e", nil,
		"Override an environment variable (KEY=VALUE, repeatable)")
	rootCmd.PersistentFlags().StringVarP(&clusterFlag, "cluster", "c", "",
		"Target cluster name (default: CLUSTER_NAME from the environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewProvisionCommand())
	rootCmd.AddCommand(NewDownCommand())
	rootCmd.AddCommand(NewRemoveCommand())
	rootCmd.AddCommand(NewRestartCommand())
	rootCmd.AddCommand(NewModulesCommand())
	rootCmd.AddCommand(NewPsCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into process exit
// codes: user errors exit 2 with a message and optional hint, system
// errors exit 1 with the cause chain shown only in verbose mode.
func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if log == nil {
		log = logging.New(verbose)
	}

	var userErr *model.UserError
	if errors.As(err, &userErr) {
		log.Error("%s", userErr.Message)
		if userErr.Hint != "" {
			log.Info("%s", userErr.Hint)
		}
		os.Exit(int(model.ExitUserError))
	}

	var sysErr *model.SystemError
	if errors.As(err, &sysErr) {
		if verbose {
			log.Error("%s", sysErr.Error())
		} else {
			log.Error("%s", sysErr.Message)
		}
		os.Exit(int(model.ExitSystemError))
	}

	log.Error("%s", err.Error())
	os.Exit(int(model.ExitSystemError))
}

// configFilePath returns the user config file location.
func configFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".minitrino", "minitrino.cfg")
}

// resolveEnvironment builds the invocation's environment mapping from the
// persistent flags and the process state.
func resolveEnvironment() (*env.Environment, error) {
	return buildEnvironment([]env.Provider{
		env.UserPairs(envPairs),
		env.ShellEnv(nil),
		env.ConfigFile(configFilePath(), log),
	}, defaultLibDir)
}

// buildEnvironment resolves the chain. The library root itself is
// configurable through the head sources, so resolution happens in two
// passes: one without the library defaults to find LIB_PATH, then the full
// chain. Each head source is evaluated exactly once; a second evaluation
// would repeat provider side effects such as the malformed-config warning.
func buildEnvironment(head []env.Provider, fallbackLibDir func() (string, error)) (*env.Environment, error) {
	cached := make([]env.Provider, 0, len(head)+1)
	for _, p := range head {
		pairs, err := p.Pairs()
		if err != nil {
			return nil, err
		}
		cached = append(cached, env.Static(p.Name, pairs))
	}

	partial, err := env.Build(cached...)
	if err != nil {
		return nil, err
	}

	libDir := partial.Get(env.KeyLibPath, "")
	if libDir == "" {
		libDir, err = fallbackLibDir()
		if err != nil {
			return nil, err
		}
	}

	return env.Build(append(cached, env.LibraryDefaults(libDir))...)
}

// defaultLibDir is the library location used when LIB_PATH is not set.
func defaultLibDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", model.WrapSystemError(err, "failed to resolve home directory")
	}
	return filepath.Join(home, ".minitrino", "lib"), nil
}

// clusterName resolves the target cluster: the --cluster flag wins, then
// CLUSTER_NAME from the environment, then the fixed default.
func clusterName(environment *env.Environment) string {
	if clusterFlag != "" {
		return clusterFlag
	}
	return environment.Get(env.KeyClusterName, "minitrino")
}
