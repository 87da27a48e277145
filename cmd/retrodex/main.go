// Package main is the entry point for the retrodex CLI.
package main

import (
	"os"

	"github.com/retrodex-labs/retrodex/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
