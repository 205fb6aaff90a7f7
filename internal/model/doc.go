// Package model defines the domain types and value objects for the
// minitrino CLI.
//
// This package contains pure data structures with no dependencies on the
// rest of the module. Module metadata is a read-only input parsed from the
// library; cluster state is reconstructed from container labels at runtime —
// there are no persistent state files beyond environment variables and flat
// config files.
//
// The package also defines exit codes (ExitCode) and the two error kinds
// (UserError, SystemError) that the CLI boundary translates into process
// exit codes.
package model
