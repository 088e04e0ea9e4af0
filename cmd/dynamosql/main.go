// Package main is the entry point for the dynamosql CLI.
package main

import (
	"os"

	"github.com/kent-id/dynamosql/cmd/dynamosql/commands"
	"github.com/kent-id/dynamosql/internal/ui"
)

var (
	// Version information (set by build)
	Version = "dev"
)

func main() {
	if err := commands.NewRootCommand(Version).Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
