// Package main is the entry point for the minitrino CLI.
//
// The binary provisions and manages local Trino clusters on a container
// runtime. All functionality lives in the internal/cli package, which
// defines the cobra commands.
package main

import (
	"github.com/jefflester/minitrino-sub001/internal/cli"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cli.Version = version

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
