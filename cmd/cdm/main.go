// Package main is the entry point for the cdm CLI.
package main

import (
	"os"

	"github.com/runger/cdm/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
