package main

import (
	"os"

	"github.com/sjkim/vega/cmd/vega/commands"
)

// main is the entry point for the Vega CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
