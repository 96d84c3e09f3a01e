// Package main provides the entry point for the filesearch CLI.
package main

import (
	"os"

	"github.com/filesearch/engine/cmd/filesearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
