package main

import (
	"log/slog"
	"os"

	"github.com/kilnworks/kilnd/internal/cli"
)

// The entry point for the kilnd daemon.
//
// All setup happens inside cli.Execute: it parses the arguments,
// configures the global logger, and runs the selected subcommand. A
// failed command exits with a non-zero code.
func main() {
	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
