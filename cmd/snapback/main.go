// Package main is the entry point for the snapback CLI.
package main

import (
	"os"

	"github.com/thoreinstein/snapback/cmd/snapback/commands"
	"github.com/thoreinstein/snapback/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
